package provider

import (
	"context"
	"slices"
	"strings"
	"time"

	"llmgames/meta"
)

// connectivityPrompt is the trivial round-trip used to probe a backend.
const connectivityPrompt = `Reply with the single word "pong".`

// TestConnection performs a live round-trip against the configured
// backend. Local validation runs first and network I/O happens only if
// it passes; all transport failures are folded into the result rather
// than escaping as errors. The probe never mutates persisted settings
// and never touches the backend cache.
func TestConnection(ctx context.Context, cfg Config) ValidationResult {
	res := ValidateConfig(cfg)
	if !res.Valid {
		return res
	}

	build, err := resolveVendor(cfg.Provider)
	if err != nil {
		res.addError("%v", err)
		return res
	}
	b, err := build(cfg, meta.TEMPERATURE)
	if err != nil {
		res.addError("could not construct backend: %v", err)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, meta.PROBE_TIMEOUT_SECONDS*time.Second)
	defer cancel()

	// A missing model is a warning, not a failure: the identifier is
	// syntactically fine and the operator may be about to pull it.
	if lister, ok := b.(modelLister); ok {
		if models, err := lister.ListModels(ctx); err == nil && len(models) > 0 && !slices.Contains(models, cfg.Model) {
			res.addWarning("model %q not found on the backend, available models are: %s",
				cfg.Model, strings.Join(models, ", "))
		}
	}

	if _, err := b.Invoke(ctx, connectivityPrompt); err != nil {
		res.addError("connection test failed: %v", err)
	}
	return res
}
