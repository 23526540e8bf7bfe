package tictactoe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"llmgames/game"
)

const GameType = "tictactoe"

const (
	playerX = "X"
	playerO = "O"
)

// board is row-major, row 0 at the top. Empty cells hold "".
type board [3][3]string

// Move places the current player's mark at Row, Col.
type Move struct {
	Row int
	Col int
}

func (m Move) String() string {
	return fmt.Sprintf("row %d, col %d", m.Row, m.Col)
}

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) GameType() string { return GameType }

func (a *Adapter) NewState(id string) (*game.State, error) {
	raw, err := json.Marshal(board{})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &game.State{
		ID:            id,
		GameType:      GameType,
		Status:        game.StatusInProgress,
		CurrentPlayer: playerX,
		CreatedAt:     now,
		LastMoveAt:    now,
		Board:         raw,
	}, nil
}

func (a *Adapter) Schema() game.MoveSchema {
	return game.MoveSchema{
		Fields: []game.IntField{
			{Name: "row", Min: 0, Max: 2},
			{Name: "col", Min: 0, Max: 2},
		},
		Reasoning: true,
	}
}

func (a *Adapter) MoveFromFields(fields map[string]int) (game.Move, error) {
	return Move{Row: fields["row"], Col: fields["col"]}, nil
}

func (a *Adapter) DecodeMove(raw []byte) (game.Move, error) {
	var fields map[string]int
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("malformed move: %w", err)
	}
	if err := a.Schema().ValidateFields(fields); err != nil {
		return nil, err
	}
	return a.MoveFromFields(fields)
}

func (a *Adapter) IsLegal(s *game.State, m game.Move) bool {
	mv, ok := m.(Move)
	if !ok || s.GameOver {
		return false
	}
	if mv.Row < 0 || mv.Row > 2 || mv.Col < 0 || mv.Col > 2 {
		return false
	}
	b, err := loadBoard(s)
	if err != nil {
		return false
	}
	return b[mv.Row][mv.Col] == ""
}

func (a *Adapter) Apply(s *game.State, m game.Move) (*game.State, error) {
	mv, ok := m.(Move)
	if !ok {
		return nil, fmt.Errorf("not a tictactoe move: %v", m)
	}
	if !a.IsLegal(s, m) {
		return nil, fmt.Errorf("illegal move: %s", a.InvalidMoveReason(s, m))
	}
	b, err := loadBoard(s)
	if err != nil {
		return nil, err
	}
	b[mv.Row][mv.Col] = s.CurrentPlayer

	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	next := s.Clone()
	next.Board = raw
	next.CurrentPlayer = other(s.CurrentPlayer)
	return next, nil
}

func (a *Adapter) CheckTerminal(s *game.State) (game.Terminal, error) {
	b, err := loadBoard(s)
	if err != nil {
		return game.Terminal{}, err
	}
	if w := winner(b); w != "" {
		return game.Terminal{Ended: true, Winner: w}, nil
	}
	if full(b) {
		return game.Terminal{Ended: true, Winner: game.Draw}, nil
	}
	return game.Terminal{}, nil
}

func (a *Adapter) RenderForPrompt(s *game.State) (string, error) {
	b, err := loadBoard(s)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("    0   1   2\n")
	for r := 0; r < 3; r++ {
		fmt.Fprintf(&sb, "%d  ", r)
		for c := 0; c < 3; c++ {
			cell := b[r][c]
			if cell == "" {
				cell = "."
			}
			fmt.Fprintf(&sb, " %s ", cell)
			if c < 2 {
				sb.WriteString("|")
			}
		}
		sb.WriteString("\n")
		if r < 2 {
			sb.WriteString("   ---+---+---\n")
		}
	}
	return sb.String(), nil
}

func (a *Adapter) Rules() string {
	return "Tic-tac-toe is played on a 3x3 grid. Players take turns placing " +
		"their mark in an empty cell. The first player to complete a row, " +
		"column or diagonal of three of their own marks wins. If the board " +
		"fills up with no such line, the game is a draw."
}

func (a *Adapter) StrategyHints() string {
	return "Win immediately if you can complete a line of three. Otherwise " +
		"block the opponent if they threaten to complete one. Prefer the " +
		"center, then corners, then edges."
}

func (a *Adapter) CurrentPlayerLabel(s *game.State) string { return s.CurrentPlayer }

func (a *Adapter) OpponentLabel(s *game.State) string { return other(s.CurrentPlayer) }

func (a *Adapter) InvalidMoveReason(s *game.State, m game.Move) string {
	mv, ok := m.(Move)
	if !ok {
		return "the move is not a tictactoe move"
	}
	if s.GameOver {
		return "the game is already over"
	}
	if mv.Row < 0 || mv.Row > 2 || mv.Col < 0 || mv.Col > 2 {
		return fmt.Sprintf("row %d, col %d is outside the 3x3 board", mv.Row, mv.Col)
	}
	b, err := loadBoard(s)
	if err != nil {
		return err.Error()
	}
	if occupant := b[mv.Row][mv.Col]; occupant != "" {
		return fmt.Sprintf("cell at row %d, col %d is already occupied by %s", mv.Row, mv.Col, occupant)
	}
	return "the move is not legal in the current position"
}

func loadBoard(s *game.State) (board, error) {
	var b board
	if err := json.Unmarshal(s.Board, &b); err != nil {
		return b, fmt.Errorf("corrupt tictactoe board: %w", err)
	}
	return b, nil
}

func other(player string) string {
	if player == playerX {
		return playerO
	}
	return playerX
}

func winner(b board) string {
	lines := [][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}
	for _, line := range lines {
		first := b[line[0][0]][line[0][1]]
		if first == "" {
			continue
		}
		if b[line[1][0]][line[1][1]] == first && b[line[2][0]][line[2][1]] == first {
			return first
		}
	}
	return ""
}

func full(b board) bool {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] == "" {
				return false
			}
		}
	}
	return true
}
