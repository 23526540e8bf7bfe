// Package engine turns free-form model output into a guaranteed-legal
// move or a typed failure. One GenerateMove call runs a bounded
// prompt/parse/validate loop, feeding rejected attempts back to the
// model as corrective feedback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"llmgames/game"
	"llmgames/meta"
	"llmgames/provider"
)

// Result is an accepted move plus whatever reasoning the model supplied.
type Result struct {
	Move      game.Move
	Reasoning string
}

// ConfigSource reads the current provider configuration. The settings
// collaborator owns the configuration; the engine only reads it per call.
type ConfigSource func() provider.Config

// BackendFactory supplies a callable backend for a configuration.
// Satisfied by *provider.Factory.
type BackendFactory interface {
	Create(cfg provider.Config, temperature float64) (provider.Backend, error)
}

// Generator orchestrates move generation against a backend from the
// factory cache.
type Generator struct {
	factory     BackendFactory
	config      ConfigSource
	temperature float64
}

func NewGenerator(factory BackendFactory, config ConfigSource) *Generator {
	return &Generator{
		factory:     factory,
		config:      config,
		temperature: meta.TEMPERATURE,
	}
}

// GenerateMove asks the model for a legal move on state, retrying up to
// maxRetries times. Parse failures, legality failures and connection
// failures all consume the same budget; retries are immediate, and the
// feedback list only grows from legality failures (a malformed response
// has no semantic mistake to describe). On exhaustion the returned
// *MoveError carries the last-seen classification and the last raw
// response.
func (g *Generator) GenerateMove(ctx context.Context, adapter game.Adapter, state *game.State, maxRetries int) (*Result, error) {
	if state.GameOver {
		return nil, fmt.Errorf("game is over - no moves allowed")
	}
	if maxRetries <= 0 {
		maxRetries = meta.MAX_RETRIES
	}
	gameType := adapter.GameType()

	// A bad configuration will not self-correct: fail before any attempt.
	cfg := g.config()
	if res := provider.ValidateConfig(cfg); !res.Valid {
		return nil, &MoveError{
			Kind:     KindConfigError,
			Message:  strings.Join(res.Errors, "; "),
			GameType: gameType,
		}
	}

	backend, err := g.factory.Create(cfg, g.temperature)
	if err != nil {
		if errors.Is(err, provider.ErrUnsupportedVendor) {
			return nil, err
		}
		return nil, &MoveError{Kind: KindConfigError, Message: err.Error(), GameType: gameType}
	}

	schema := adapter.Schema()
	feedback := make([]string, 0, maxRetries)
	var lastRaw string
	var lastKind ErrorKind
	var lastMsg string

	for attempt := 1; attempt <= maxRetries; attempt++ {
		prompt, err := buildPrompt(adapter, state, feedback)
		if err != nil {
			return nil, fmt.Errorf("build prompt: %w", err)
		}

		raw, err := backend.Invoke(ctx, prompt)
		if err != nil {
			// First catch of a kind-less backend failure: classified
			// here, once, and never reclassified above.
			lastKind, lastMsg = KindConnectionFailed, err.Error()
			log.Warn().Str("game", gameType).Int("attempt", attempt).Err(err).Msg("backend call failed")
			continue
		}
		lastRaw = raw

		fields, reasoning, err := game.ParseModelResponse(schema, raw)
		if err != nil {
			lastKind, lastMsg = KindInvalidJSON, err.Error()
			log.Debug().Str("game", gameType).Int("attempt", attempt).Err(err).Msg("unparseable model response")
			continue
		}
		move, err := adapter.MoveFromFields(fields)
		if err != nil {
			lastKind, lastMsg = KindInvalidJSON, err.Error()
			continue
		}

		if !adapter.IsLegal(state, move) {
			reason := adapter.InvalidMoveReason(state, move)
			feedback = append(feedback, reason)
			lastKind, lastMsg = KindInvalidMove, reason
			log.Debug().Str("game", gameType).Int("attempt", attempt).Str("move", move.String()).Str("reason", reason).Msg("illegal move proposed")
			continue
		}

		log.Info().Str("game", gameType).Int("attempt", attempt).Str("move", move.String()).Msg("model move accepted")
		return &Result{Move: move, Reasoning: reasoning}, nil
	}

	return nil, &MoveError{
		Kind:        lastKind,
		Message:     fmt.Sprintf("no legal move after %d attempts: %s", maxRetries, lastMsg),
		RawResponse: lastRaw,
		GameType:    gameType,
	}
}
