package connectfour

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"llmgames/game"
)

const GameType = "connectfour"

const (
	rows = 6
	cols = 7

	playerRed    = "red"
	playerYellow = "yellow"
)

// board is row-major with row 0 at the top, so a dropped piece settles in
// the highest-index empty row of its column.
type board [rows][cols]string

// Move drops the current player's piece into Column.
type Move struct {
	Column int
}

func (m Move) String() string {
	return fmt.Sprintf("column %d", m.Column)
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
		CurrentPlayer: playerRed,
		CreatedAt:     now,
		LastMoveAt:    now,
		Board:         raw,
	}, nil
}

func (a *Adapter) Schema() game.MoveSchema {
	return game.MoveSchema{
		Fields: []game.IntField{
			{Name: "column", Min: 0, Max: cols - 1},
		},
		Reasoning: true,
	}
}

func (a *Adapter) MoveFromFields(fields map[string]int) (game.Move, error) {
	return Move{Column: fields["column"]}, nil
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
	if mv.Column < 0 || mv.Column >= cols {
		return false
	}
	b, err := loadBoard(s)
	if err != nil {
		return false
	}
	return b[0][mv.Column] == ""
}

func (a *Adapter) Apply(s *game.State, m game.Move) (*game.State, error) {
	mv, ok := m.(Move)
	if !ok {
		return nil, fmt.Errorf("not a connectfour move: %v", m)
	}
	if !a.IsLegal(s, m) {
		return nil, fmt.Errorf("illegal move: %s", a.InvalidMoveReason(s, m))
	}
	b, err := loadBoard(s)
	if err != nil {
		return nil, err
	}
	for r := rows - 1; r >= 0; r-- {
		if b[r][mv.Column] == "" {
			b[r][mv.Column] = s.CurrentPlayer
			break
		}
	}

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
	sb.WriteString("  0 1 2 3 4 5 6\n")
	for r := 0; r < rows; r++ {
		sb.WriteString(" ")
		for c := 0; c < cols; c++ {
			sb.WriteString(" ")
			switch b[r][c] {
			case playerRed:
				sb.WriteString("R")
			case playerYellow:
				sb.WriteString("Y")
			default:
				sb.WriteString(".")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("(R = red, Y = yellow, . = empty; pieces fall to the lowest empty row)\n")
	return sb.String(), nil
}

func (a *Adapter) Rules() string {
	return "Connect Four is played on a 7-column, 6-row vertical grid. " +
		"Players take turns dropping a piece of their color into a column; " +
		"the piece falls to the lowest empty row of that column. The first " +
		"player to line up four of their own pieces horizontally, vertically " +
		"or diagonally wins. A column whose top cell is occupied cannot be " +
		"played. If the grid fills up with no line of four, the game is a draw."
}

func (a *Adapter) StrategyHints() string {
	return "Complete four in a row if you can. Otherwise block the opponent " +
		"when they have three in a row with a playable continuation. Favor " +
		"the center column, and watch for diagonal threats building under " +
		"your own moves."
}

func (a *Adapter) CurrentPlayerLabel(s *game.State) string { return s.CurrentPlayer }

func (a *Adapter) OpponentLabel(s *game.State) string { return other(s.CurrentPlayer) }

func (a *Adapter) InvalidMoveReason(s *game.State, m game.Move) string {
	mv, ok := m.(Move)
	if !ok {
		return "the move is not a connectfour move"
	}
	if s.GameOver {
		return "the game is already over"
	}
	if mv.Column < 0 || mv.Column >= cols {
		return fmt.Sprintf("column %d is outside the board (columns 0 to %d)", mv.Column, cols-1)
	}
	b, err := loadBoard(s)
	if err != nil {
		return err.Error()
	}
	if b[0][mv.Column] != "" {
		return fmt.Sprintf("column %d is full", mv.Column)
	}
	return "the move is not legal in the current position"
}

func loadBoard(s *game.State) (board, error) {
	var b board
	if err := json.Unmarshal(s.Board, &b); err != nil {
		return b, fmt.Errorf("corrupt connectfour board: %w", err)
	}
	return b, nil
}

func other(player string) string {
	if player == playerRed {
		return playerYellow
	}
	return playerRed
}

// winner scans every cell in the four drop directions: right, down, and
// the two diagonals.
func winner(b board) string {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			piece := b[r][c]
			if piece == "" {
				continue
			}
			for _, d := range dirs {
				count := 1
				rr, cc := r+d[0], c+d[1]
				for rr >= 0 && rr < rows && cc >= 0 && cc < cols && b[rr][cc] == piece {
					count++
					if count == 4 {
						return piece
					}
					rr += d[0]
					cc += d[1]
				}
			}
		}
	}
	return ""
}

func full(b board) bool {
	for c := 0; c < cols; c++ {
		if b[0][c] == "" {
			return false
		}
	}
	return true
}
