package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	Adapter
	tag string
}

func (s stubAdapter) GameType() string { return s.tag }

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("tictactoe")
	require.ErrorIs(t, err, ErrUnknownGameType)

	r.Register(stubAdapter{tag: "tictactoe"})
	a, err := r.Get("tictactoe")
	require.NoError(t, err)
	require.Equal(t, "tictactoe", a.GameType())

	r.Reset()
	_, err = r.Get("tictactoe")
	require.ErrorIs(t, err, ErrUnknownGameType)
}

func TestStateClone(t *testing.T) {
	s := &State{
		ID:            "g1",
		GameType:      "tictactoe",
		Status:        StatusInProgress,
		CurrentPlayer: "X",
		Board:         json.RawMessage(`[["X","",""],["","",""],["","",""]]`),
	}

	c := s.Clone()
	require.Equal(t, s, c)

	c.Board[3] = 'O'
	c.CurrentPlayer = "O"
	require.Equal(t, "X", s.CurrentPlayer)
	require.Equal(t, byte('X'), s.Board[3], "clone must not share board bytes")
}
