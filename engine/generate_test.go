package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"llmgames/game"
	"llmgames/game/connectfour"
	"llmgames/game/tictactoe"
	"llmgames/provider"
)

type invokeResult struct {
	text string
	err  error
}

// scriptedBackend replays canned responses and records every prompt it
// was sent.
type scriptedBackend struct {
	responses []invokeResult
	prompts   []string
}

func (s *scriptedBackend) Invoke(_ context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i >= len(s.responses) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return s.responses[i].text, s.responses[i].err
}

func (s *scriptedBackend) Name() string { return "scripted" }

type fakeFactory struct {
	backend provider.Backend
	err     error
}

func (f fakeFactory) Create(provider.Config, float64) (provider.Backend, error) {
	return f.backend, f.err
}

func validConfig() provider.Config {
	return provider.Config{Provider: provider.VendorOllama, Model: "llama3.1"}
}

func newGenerator(backend provider.Backend) *Generator {
	return NewGenerator(fakeFactory{backend: backend}, validConfig)
}

func tictactoeState(t *testing.T, rows [3][3]string, player string) *game.State {
	t.Helper()
	s, err := tictactoe.New().NewState("g1")
	require.NoError(t, err)
	raw, err := json.Marshal(rows)
	require.NoError(t, err)
	s.Board = raw
	s.CurrentPlayer = player
	return s
}

func TestGenerateMoveAccepted(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{
		{"X", "X", ""},
		{"O", "O", ""},
		{"", "", ""},
	}, "X")
	backend := &scriptedBackend{responses: []invokeResult{
		{text: `{"move": {"row": 0, "col": 2}, "reasoning": "completes the top row"}`},
	}}

	res, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
	require.NoError(t, err)
	require.Equal(t, tictactoe.Move{Row: 0, Col: 2}, res.Move)
	require.Equal(t, "completes the top row", res.Reasoning)
	require.Len(t, backend.prompts, 1)

	next, err := adapter.Apply(state, res.Move)
	require.NoError(t, err)
	term, err := adapter.CheckTerminal(next)
	require.NoError(t, err)
	require.True(t, term.Ended)
	require.Equal(t, "X", term.Winner)
}

func TestGenerateMoveExhaustsLegalityRetries(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{
		{"X", "", ""},
		{"", "", ""},
		{"", "", ""},
	}, "O")

	// same occupied cell three times, each with distinguishable raw text
	backend := &scriptedBackend{responses: []invokeResult{
		{text: `{"move": {"row": 0, "col": 0}, "reasoning": "first"}`},
		{text: `{"move": {"row": 0, "col": 0}, "reasoning": "second"}`},
		{text: `{"move": {"row": 0, "col": 0}, "reasoning": "third"}`},
	}}

	_, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
	require.Error(t, err)

	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	require.Equal(t, KindInvalidMove, moveErr.Kind)
	require.Contains(t, moveErr.RawResponse, "third", "error must carry the last attempt's raw text")
	require.Equal(t, tictactoe.GameType, moveErr.GameType)
	require.Len(t, backend.prompts, 3, "budget is exactly maxRetries attempts")
}

func TestGenerateMoveFeedbackAccumulates(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{
		{"X", "O", ""},
		{"", "", ""},
		{"", "", ""},
	}, "X")

	backend := &scriptedBackend{responses: []invokeResult{
		{text: `{"move": {"row": 0, "col": 0}}`}, // occupied by X
		{text: `{"move": {"row": 0, "col": 1}}`}, // occupied by O
		{text: `{"move": {"row": 2, "col": 2}}`}, // legal
	}}

	res, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
	require.NoError(t, err)
	require.Equal(t, tictactoe.Move{Row: 2, Col: 2}, res.Move)

	require.NotContains(t, backend.prompts[0], "previous attempts")
	require.Contains(t, backend.prompts[1], "occupied by X")
	require.Contains(t, backend.prompts[2], "occupied by X", "feedback lists every prior failure")
	require.Contains(t, backend.prompts[2], "occupied by O")
}

func TestGenerateMoveInvalidJSON(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{}, "X")
	boardBefore := string(state.Board)

	backend := &scriptedBackend{responses: []invokeResult{
		{text: "I would play the center."},
		{text: "The center is strongest."},
		{text: "Definitely the center!"},
	}}

	_, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	require.Equal(t, KindInvalidJSON, moveErr.Kind)
	require.Equal(t, "Definitely the center!", moveErr.RawResponse)

	require.Equal(t, boardBefore, string(state.Board), "state must be untouched on failure")

	// parse failures add no feedback text - there is no semantic mistake
	// to describe
	require.NotContains(t, backend.prompts[1], "previous attempts")
	require.NotContains(t, backend.prompts[2], "previous attempts")
}

func TestGenerateMoveSchemaBoundsAreParseFailures(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{}, "X")

	backend := &scriptedBackend{responses: []invokeResult{
		{text: `{"move": {"row": 7, "col": 0}}`},
	}}

	_, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 1)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	require.Equal(t, KindInvalidJSON, moveErr.Kind)
}

func TestGenerateMoveConnectionFailures(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{}, "X")

	t.Run("all attempts fail", func(t *testing.T) {
		backend := &scriptedBackend{responses: []invokeResult{
			{err: errors.New("dial tcp: connection refused")},
			{err: errors.New("dial tcp: connection refused")},
			{err: errors.New("dial tcp: connection refused")},
		}}
		_, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
		var moveErr *MoveError
		require.ErrorAs(t, err, &moveErr)
		require.Equal(t, KindConnectionFailed, moveErr.Kind)
		require.Empty(t, moveErr.RawResponse)
	})

	t.Run("recovers within the budget", func(t *testing.T) {
		backend := &scriptedBackend{responses: []invokeResult{
			{err: errors.New("timeout")},
			{text: `{"move": {"row": 1, "col": 1}}`},
		}}
		res, err := newGenerator(backend).GenerateMove(context.Background(), adapter, state, 3)
		require.NoError(t, err)
		require.Equal(t, tictactoe.Move{Row: 1, Col: 1}, res.Move)
	})
}

func TestGenerateMoveConfigError(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{}, "X")
	backend := &scriptedBackend{}

	gen := NewGenerator(fakeFactory{backend: backend}, func() provider.Config {
		return provider.Config{Provider: provider.VendorOpenAI} // no model, no key
	})

	_, err := gen.GenerateMove(context.Background(), adapter, state, 3)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	require.Equal(t, KindConfigError, moveErr.Kind)
	require.Empty(t, backend.prompts, "a bad configuration is never retried against the backend")
}

func TestGenerateMoveGameOver(t *testing.T) {
	adapter := tictactoe.New()
	state := tictactoeState(t, [3][3]string{}, "X")
	state.GameOver = true
	state.Winner = "X"

	_, err := newGenerator(&scriptedBackend{}).GenerateMove(context.Background(), adapter, state, 3)
	require.Error(t, err)
}

func TestGenerateMoveConnectFourFullColumn(t *testing.T) {
	adapter := connectfour.New()
	s, err := adapter.NewState("g2")
	require.NoError(t, err)

	// fill column 3 to the top
	var b [6][7]string
	for r := 0; r < 6; r++ {
		if r%2 == 0 {
			b[r][3] = "red"
		} else {
			b[r][3] = "yellow"
		}
	}
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	s.Board = raw
	s.CurrentPlayer = "red"

	backend := &scriptedBackend{responses: []invokeResult{
		{text: `{"move": {"column": 3}, "reasoning": "stack the middle"}`},
		{text: `{"move": {"column": 2}, "reasoning": "next to the stack"}`},
	}}

	res, err := newGenerator(backend).GenerateMove(context.Background(), adapter, s, 3)
	require.NoError(t, err)
	require.Equal(t, connectfour.Move{Column: 2}, res.Move)
	require.Contains(t, backend.prompts[1], "column 3 is full")

	next, err := adapter.Apply(s, res.Move)
	require.NoError(t, err)
	var nb [6][7]string
	require.NoError(t, json.Unmarshal(next.Board, &nb))
	require.Equal(t, "red", nb[5][2], "piece lands in the lowest empty row, not row 0")
	require.Equal(t, "", nb[0][2])
}
