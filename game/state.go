package game

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle phase of a game session.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
)

// Draw is the winner marker for a finished game with no winning player.
const Draw = "draw"

// State is the shared shape of a game session. The board payload is opaque
// to everything but the owning adapter.
//
// State is immutable between transitions - operations that advance a game
// always return a new copy, so concurrent readers of the previous state
// stay valid while a move is in flight.
type State struct {
	ID            string          `json:"id"`
	GameType      string          `json:"gameType"`
	Status        Status          `json:"status"`
	CurrentPlayer string          `json:"currentPlayer"`
	GameOver      bool            `json:"gameOver"`
	Winner        string          `json:"winner,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastMoveAt    time.Time       `json:"lastMoveAt"`
	Board         json.RawMessage `json:"board"`
}

// Clone returns a deep copy of s, including the board payload.
func (s *State) Clone() *State {
	next := *s
	if s.Board != nil {
		next.Board = make(json.RawMessage, len(s.Board))
		copy(next.Board, s.Board)
	}
	return &next
}

// Terminal is the outcome of a terminal-state check. Winner is a player
// symbol, or Draw when the board is exhausted with no winning line.
type Terminal struct {
	Ended  bool
	Winner string
}
