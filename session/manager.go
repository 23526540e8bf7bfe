// Package session owns game state between transitions. The manager
// dispatches moves to the right game adapter and folds terminal-state
// detection into every transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"llmgames/engine"
	"llmgames/game"
	"llmgames/meta"
)

// MoveGenerator produces a legal move for the current player. Satisfied
// by *engine.Generator.
type MoveGenerator interface {
	GenerateMove(ctx context.Context, adapter game.Adapter, state *game.State, maxRetries int) (*engine.Result, error)
}

var (
	// ErrIllegalMove reports a caller-supplied move the adapter
	// rejected. Human moves are never retried.
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over - no moves allowed")
)

// Manager dispatches move requests to game adapters. It does not
// serialize concurrent requests against the same session; callers that
// can issue overlapping moves must do that themselves.
type Manager struct {
	registry   *game.Registry
	generator  MoveGenerator
	maxRetries int
}

func NewManager(registry *game.Registry, generator MoveGenerator) *Manager {
	return &Manager{
		registry:   registry,
		generator:  generator,
		maxRetries: meta.MAX_RETRIES,
	}
}

// NewGame builds the initial state for a game type.
func (m *Manager) NewGame(gameType, id string) (*game.State, error) {
	adapter, err := m.registry.Get(gameType)
	if err != nil {
		return nil, err
	}
	return adapter.NewState(id)
}

// ApplyMove applies a human-originated raw move payload and returns the
// successor state.
func (m *Manager) ApplyMove(state *game.State, rawMove []byte) (*game.State, error) {
	adapter, err := m.registry.Get(state.GameType)
	if err != nil {
		return nil, err
	}
	if state.GameOver {
		return nil, ErrGameOver
	}

	move, err := adapter.DecodeMove(rawMove)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	if !adapter.IsLegal(state, move) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, adapter.InvalidMoveReason(state, move))
	}

	next, err := adapter.Apply(state, move)
	if err != nil {
		return nil, err
	}
	if err := m.finalize(adapter, next); err != nil {
		return nil, err
	}
	return next, nil
}

// RequestModelMove asks the model for the current player's move and
// applies it.
func (m *Manager) RequestModelMove(ctx context.Context, state *game.State) (*game.State, error) {
	adapter, err := m.registry.Get(state.GameType)
	if err != nil {
		return nil, err
	}
	if state.GameOver {
		return nil, ErrGameOver
	}

	res, err := m.generator.GenerateMove(ctx, adapter, state, m.maxRetries)
	if err != nil {
		return nil, err
	}
	if res.Reasoning != "" {
		log.Debug().Str("game", state.GameType).Str("id", state.ID).Str("reasoning", res.Reasoning).Msg("model reasoning")
	}

	next, err := adapter.Apply(state, res.Move)
	if err != nil {
		return nil, err
	}
	if err := m.finalize(adapter, next); err != nil {
		return nil, err
	}
	return next, nil
}

// finalize recomputes terminal status fresh from the post-move board -
// it is never carried over from the previous state - and stamps the
// transition.
func (m *Manager) finalize(adapter game.Adapter, s *game.State) error {
	term, err := adapter.CheckTerminal(s)
	if err != nil {
		return err
	}
	s.LastMoveAt = time.Now()
	if term.Ended {
		s.GameOver = true
		s.Winner = term.Winner
		s.Status = game.StatusCompleted
	} else {
		s.GameOver = false
		s.Winner = ""
		s.Status = game.StatusInProgress
	}
	return nil
}
