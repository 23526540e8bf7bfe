package engine

import "fmt"

// ErrorKind classifies a move-generation failure. Callers branch on the
// kind; an assigned kind is never reclassified by an outer layer.
type ErrorKind string

const (
	// KindInvalidMove - schema-valid but rule-illegal, retried with feedback.
	KindInvalidMove ErrorKind = "invalid_move"
	// KindInvalidJSON - output did not conform to the move schema, retried.
	KindInvalidJSON ErrorKind = "invalid_json"
	// KindConnectionFailed - transport or auth failure reaching the backend.
	KindConnectionFailed ErrorKind = "connection_failed"
	// KindConfigError - bad provider configuration, never retried.
	KindConfigError ErrorKind = "config_error"
)

// MoveError is the typed failure of a move-generation attempt chain.
// RawResponse holds the last raw model output (if any was produced) so
// failures can be diagnosed without re-invoking the model.
type MoveError struct {
	Kind        ErrorKind `json:"errorType"`
	Message     string    `json:"message"`
	RawResponse string    `json:"llmResponse,omitempty"`
	GameType    string    `json:"gameType,omitempty"`
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
