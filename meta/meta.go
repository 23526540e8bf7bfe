// meta/meta.go
package meta

// MAX_RETRIES defines the retry budget for one model move request.
const MAX_RETRIES = 3

// TEMPERATURE defines the default sampling temperature for move generation.
const TEMPERATURE = 0.7

// HTTP_TIMEOUT_SECONDS bounds a single backend completion call.
const HTTP_TIMEOUT_SECONDS = 120

// PROBE_TIMEOUT_SECONDS bounds a connectivity probe round-trip.
const PROBE_TIMEOUT_SECONDS = 30

// MAX_RESPONSE_TOKENS caps the completion length requested from vendors
// that require an explicit limit.
const MAX_RESPONSE_TOKENS = 1024
