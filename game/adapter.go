package game

import (
	"errors"
	"fmt"
	"sync"
)

// Move is a game-specific move payload. An adapter only accepts moves it
// produced itself through MoveFromFields or DecodeMove.
type Move interface {
	fmt.Stringer
}

// Adapter is the capability set a game must implement to be playable by a
// model. Apply must never mutate the state it is given.
type Adapter interface {
	GameType() string

	// NewState builds the initial session state for this game.
	NewState(id string) (*State, error)

	// Schema declares the move shape the parser enforces and the format
	// instructions embedded in prompts.
	Schema() MoveSchema

	// MoveFromFields builds a concrete move from schema-validated fields.
	MoveFromFields(fields map[string]int) (Move, error)

	// DecodeMove parses a caller-supplied raw move payload, enforcing the
	// schema bounds.
	DecodeMove(raw []byte) (Move, error)

	IsLegal(s *State, m Move) bool
	Apply(s *State, m Move) (*State, error)
	CheckTerminal(s *State) (Terminal, error)

	// RenderForPrompt returns a textual view of the board for the model.
	RenderForPrompt(s *State) (string, error)
	Rules() string
	StrategyHints() string
	CurrentPlayerLabel(s *State) string
	OpponentLabel(s *State) string

	// InvalidMoveReason explains why a schema-valid move is illegal on s,
	// specific enough for the model to correct itself.
	InvalidMoveReason(s *State, m Move) string
}

// ErrUnknownGameType reports a game-type tag with no registered adapter.
var ErrUnknownGameType = errors.New("unknown game type")

// Registry maps game-type tags to adapters. It has an explicit lifecycle
// (Register/Reset) so tests can rebuild it deterministically.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces the adapter for its game type.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.GameType()] = a
}

// Get resolves a game-type tag. There is no fallback: an unregistered tag
// is fatal to the calling operation.
func (r *Registry) Get(gameType string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[gameType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, gameType)
	}
	return a, nil
}

// Reset removes all registered adapters.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = map[string]Adapter{}
}
