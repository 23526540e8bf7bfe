package provider

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"llmgames/meta"
)

// ErrUnsupportedVendor reports a vendor tag with no registered
// constructor. There is no fallback vendor.
var ErrUnsupportedVendor = errors.New("unsupported provider")

type constructor func(cfg Config, temperature float64) (Backend, error)

func resolveVendor(v Vendor) (constructor, error) {
	switch v {
	case VendorOllama:
		return newOllamaBackend, nil
	case VendorOpenAI:
		return newOpenAIBackend, nil
	case VendorAnthropic:
		return newAnthropicBackend, nil
	case VendorAzure:
		return newAzureBackend, nil
	case VendorBedrock:
		return newBedrockBackend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVendor, v)
	}
}

// Factory constructs backends and memoizes them by configuration
// fingerprint. It is the only shared mutable resource in the engine:
// lookups are concurrent-safe, and ClearCache only affects future
// lookups - instances already handed out stay usable.
type Factory struct {
	mu    sync.RWMutex
	cache map[string]Backend
}

func NewFactory() *Factory {
	return &Factory{cache: map[string]Backend{}}
}

// Create returns a cached backend for the configuration, constructing
// one on first use.
func (f *Factory) Create(cfg Config, temperature float64) (Backend, error) {
	key := Fingerprint(cfg, temperature)

	f.mu.RLock()
	b, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		return b, nil
	}

	build, err := resolveVendor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	b, err = build(cfg, temperature)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.cache[key]; ok {
		return existing, nil
	}
	f.cache[key] = b
	log.Debug().Str("provider", string(cfg.Provider)).Str("model", cfg.Model).Msg("constructed backend")
	return b, nil
}

// CreateEphemeral constructs a backend without touching the cache, for
// connectivity tests.
func (f *Factory) CreateEphemeral(cfg Config) (Backend, error) {
	build, err := resolveVendor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return build(cfg, meta.TEMPERATURE)
}

// ClearCache drops all cached backends. Callers that change provider
// configuration outside the factory (credential rotation in particular)
// must call this, since rotated secrets do not change the fingerprint.
func (f *Factory) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = map[string]Backend{}
}

// Fingerprint is a deterministic serialization of the cache-relevant
// configuration. Secrets contribute only a presence flag, so the key
// never embeds raw credential material; two configurations differing
// only in secret value collapse to the same entry.
func Fingerprint(cfg Config, temperature float64) string {
	return fmt.Sprintf("%s|%s|temp=%.2f|url=%s|region=%s|azure=%s/%s/%s|xr=%t|key=%t|akid=%t|sak=%t",
		cfg.Provider, cfg.Model, temperature,
		cfg.URL, cfg.Region,
		cfg.AzureInstance, cfg.AzureDeployment, cfg.AzureAPIVersion,
		cfg.CrossRegion,
		cfg.APIKey != "", cfg.AccessKeyID != "", cfg.SecretAccessKey != "")
}
