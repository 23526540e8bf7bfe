package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"llmgames/engine"
	"llmgames/game"
	"llmgames/game/tictactoe"
)

type fakeGenerator struct {
	result *engine.Result
	err    error
}

func (f fakeGenerator) GenerateMove(context.Context, game.Adapter, *game.State, int) (*engine.Result, error) {
	return f.result, f.err
}

func newTestManager(gen MoveGenerator) *Manager {
	registry := game.NewRegistry()
	registry.Register(tictactoe.New())
	return NewManager(registry, gen)
}

func TestManagerApplyMove(t *testing.T) {
	m := newTestManager(fakeGenerator{})
	state, err := m.NewGame(tictactoe.GameType, "g1")
	if err != nil {
		t.Fatalf("expected no error creating game, got %v", err)
	}
	if state.CurrentPlayer != "X" {
		t.Errorf("expected X to start, got %q", state.CurrentPlayer)
	}

	next, err := m.ApplyMove(state, []byte(`{"row": 0, "col": 0}`))
	if err != nil {
		t.Fatalf("expected no error for a legal move, got %v", err)
	}
	if next.CurrentPlayer != "O" {
		t.Errorf("expected turn to pass to O, got %q", next.CurrentPlayer)
	}
	if next.Status != game.StatusInProgress {
		t.Errorf("expected status in_progress, got %q", next.Status)
	}
	if !next.LastMoveAt.After(state.LastMoveAt) && !next.LastMoveAt.Equal(state.LastMoveAt) {
		t.Error("expected LastMoveAt to be stamped")
	}

	// the previous state is a distinct, untouched value
	var before [3][3]string
	if err := json.Unmarshal(state.Board, &before); err != nil {
		t.Fatalf("unmarshal original board: %v", err)
	}
	if before[0][0] != "" {
		t.Error("expected original state to be unmodified")
	}
}

func TestManagerApplyMove_Illegal(t *testing.T) {
	m := newTestManager(fakeGenerator{})
	state, _ := m.NewGame(tictactoe.GameType, "g1")

	state, err := m.ApplyMove(state, []byte(`{"row": 1, "col": 1}`))
	if err != nil {
		t.Fatalf("setup move failed: %v", err)
	}

	if _, err := m.ApplyMove(state, []byte(`{"row": 1, "col": 1}`)); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for an occupied cell, got %v", err)
	}
	if _, err := m.ApplyMove(state, []byte(`{"row": 9, "col": 0}`)); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for out-of-bounds, got %v", err)
	}
	if _, err := m.ApplyMove(state, []byte(`not json`)); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for a malformed payload, got %v", err)
	}
}

func TestManagerUnknownGameType(t *testing.T) {
	m := newTestManager(fakeGenerator{})

	if _, err := m.NewGame("chess", "g1"); !errors.Is(err, game.ErrUnknownGameType) {
		t.Errorf("expected ErrUnknownGameType, got %v", err)
	}

	state, _ := m.NewGame(tictactoe.GameType, "g1")
	state.GameType = "chess"
	if _, err := m.ApplyMove(state, []byte(`{"row": 0, "col": 0}`)); !errors.Is(err, game.ErrUnknownGameType) {
		t.Errorf("expected ErrUnknownGameType, got %v", err)
	}
}

func TestManagerTerminalFoldIn(t *testing.T) {
	m := newTestManager(fakeGenerator{})
	state, _ := m.NewGame(tictactoe.GameType, "g1")

	board := [3][3]string{
		{"X", "X", ""},
		{"O", "O", ""},
		{"", "", ""},
	}
	raw, _ := json.Marshal(board)
	state.Board = raw
	state.CurrentPlayer = "X"

	next, err := m.ApplyMove(state, []byte(`{"row": 0, "col": 2}`))
	if err != nil {
		t.Fatalf("expected winning move to apply, got %v", err)
	}
	if !next.GameOver {
		t.Error("expected GameOver after the winning move")
	}
	if next.Winner != "X" {
		t.Errorf("expected winner X, got %q", next.Winner)
	}
	if next.Status != game.StatusCompleted {
		t.Errorf("expected status completed, got %q", next.Status)
	}

	if _, err := m.ApplyMove(next, []byte(`{"row": 2, "col": 2}`)); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver on a finished game, got %v", err)
	}
	if _, err := m.RequestModelMove(context.Background(), next); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver on a finished game, got %v", err)
	}
}

func TestManagerRequestModelMove(t *testing.T) {
	gen := fakeGenerator{result: &engine.Result{Move: tictactoe.Move{Row: 1, Col: 1}, Reasoning: "center"}}
	m := newTestManager(gen)
	state, _ := m.NewGame(tictactoe.GameType, "g1")

	next, err := m.RequestModelMove(context.Background(), state)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var b [3][3]string
	if err := json.Unmarshal(next.Board, &b); err != nil {
		t.Fatalf("unmarshal board: %v", err)
	}
	if b[1][1] != "X" {
		t.Errorf("expected X placed in the center, got %q", b[1][1])
	}
	if next.CurrentPlayer != "O" {
		t.Errorf("expected turn to pass to O, got %q", next.CurrentPlayer)
	}
}

func TestManagerRequestModelMove_ErrorPassthrough(t *testing.T) {
	want := &engine.MoveError{Kind: engine.KindInvalidJSON, Message: "no JSON", RawResponse: "gibberish", GameType: tictactoe.GameType}
	m := newTestManager(fakeGenerator{err: want})
	state, _ := m.NewGame(tictactoe.GameType, "g1")

	_, err := m.RequestModelMove(context.Background(), state)
	var got *engine.MoveError
	if !errors.As(err, &got) {
		t.Fatalf("expected a MoveError, got %v", err)
	}
	if got.Kind != engine.KindInvalidJSON || got.RawResponse != "gibberish" {
		t.Errorf("expected the error to pass through unchanged, got %+v", got)
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss on empty store")
	}

	st := &game.State{ID: "g1", GameType: tictactoe.GameType}
	s.Put(st)
	got, ok := s.Get("g1")
	if !ok || got.ID != "g1" {
		t.Errorf("expected to read back g1, got %+v ok=%v", got, ok)
	}

	s.Delete("g1")
	if _, ok := s.Get("g1"); ok {
		t.Error("expected delete to remove the game")
	}
}
