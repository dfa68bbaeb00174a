// Package strategy decides which end of the board the computer takes.
//
// Two algorithms are provided. Heuristic is the parity-sum commitment used
// when the computer moves first; Table is the exact dynamic-programming
// solution used when the computer moves second. Both are pure: they read the
// board and window they are given and return a Decision with a rationale a
// player can audit. Nothing here holds a reference to game.State.
package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/pickends/internal/game"
)

// Tag names the algorithm a computer seat uses for a whole game.
type Tag string

const (
	Heuristic Tag = "heuristic"
	Optimal   Tag = "optimal"
)

// TagForComputer returns the algorithm for a computer sitting in seat.
// The first mover commits to the parity heuristic; the second mover plays
// the exact solution.
func TagForComputer(seat game.Seat) Tag {
	if seat == game.Seat1 {
		return Heuristic
	}
	return Optimal
}

// ParseTag converts a string into a Tag.
func ParseTag(s string) (Tag, error) {
	switch Tag(strings.ToLower(strings.TrimSpace(s))) {
	case Heuristic:
		return Heuristic, nil
	case Optimal:
		return Optimal, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", game.ErrInvalidConfiguration, s)
	}
}

// Decision is a chosen end together with the reasoning behind it.
type Decision struct {
	End       game.End `json:"end"`
	Index     int      `json:"index"`
	Value     int      `json:"value"`
	Rationale string   `json:"rationale"`
}

// Strategy chooses a move for the player to act on a window of its board.
type Strategy interface {
	Tag() Tag
	// Intro explains the approach once, at the start of a game.
	Intro() string
	Decide(w game.Window) (Decision, error)
}

// New builds the strategy named by tag over the full board.
func New(tag Tag, board game.Board) (Strategy, error) {
	switch tag {
	case Heuristic:
		return NewHeuristic(board)
	case Optimal:
		return NewTable(board, game.FullWindow(len(board)))
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", game.ErrInvalidConfiguration, tag)
	}
}

// Request is a stateless decision request: the whole board, the current
// window and the computer's seat. An empty Tag is derived from the seat.
type Request struct {
	Board        game.Board
	Window       game.Window
	ComputerSeat game.Seat
	Tag          Tag
}

// ComputerMove answers a Request without any retained state. The heuristic
// bias is taken over the whole board; the optimal table is built over the
// current window only.
func ComputerMove(req Request) (Decision, error) {
	if err := req.Board.Validate(); err != nil {
		return Decision{}, err
	}
	if !req.ComputerSeat.Valid() {
		return Decision{}, fmt.Errorf("%w: unknown computer seat %d", game.ErrInvalidConfiguration, int(req.ComputerSeat))
	}
	if !req.Window.ValidFor(len(req.Board)) || req.Window.Empty() {
		return Decision{}, fmt.Errorf("%w: window %s has no open end on a board of %d", game.ErrEngineInternal, req.Window, len(req.Board))
	}

	// Seat 1 moves whenever an even number of values has been claimed.
	claimed := len(req.Board) - req.Window.Len()
	toMove := game.Seat1
	if claimed%2 == 1 {
		toMove = game.Seat2
	}
	if toMove != req.ComputerSeat {
		return Decision{}, fmt.Errorf("%w: window %s is %s's turn, not the computer's", game.ErrInvalidMove, req.Window, toMove)
	}

	tag := req.Tag
	if tag == "" {
		tag = TagForComputer(req.ComputerSeat)
	}

	switch tag {
	case Heuristic:
		h, err := NewHeuristic(req.Board)
		if err != nil {
			return Decision{}, err
		}
		return h.Decide(req.Window)
	case Optimal:
		t, err := NewTable(req.Board, req.Window)
		if err != nil {
			return Decision{}, err
		}
		return t.Decide(req.Window)
	default:
		return Decision{}, fmt.Errorf("%w: unknown strategy %q", game.ErrInvalidConfiguration, tag)
	}
}

func checkWindow(board game.Board, w game.Window) error {
	if w.Empty() || !w.ValidFor(len(board)) {
		return fmt.Errorf("%w: window %s is empty or outside a board of %d", game.ErrEngineInternal, w, len(board))
	}
	return nil
}
