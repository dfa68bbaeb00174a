package strategy

import (
	"fmt"

	"github.com/lox/pickends/internal/game"
)

// Parity is the 1-indexed position class the heuristic tries to collect.
type Parity string

const (
	Odd  Parity = "odd"
	Even Parity = "even"
)

// ParityOf returns the 1-indexed parity of a 0-indexed board position.
func ParityOf(index int) Parity {
	if (index+1)%2 == 1 {
		return Odd
	}
	return Even
}

// HeuristicStrategy commits to one parity class for the whole game.
// It is not guaranteed to be optimal.
type HeuristicStrategy struct {
	board   game.Board
	OddSum  int
	EvenSum int
	Bias    Parity
}

// NewHeuristic sums the board by 1-indexed parity once. Ties choose even.
func NewHeuristic(board game.Board) (*HeuristicStrategy, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}

	h := &HeuristicStrategy{board: board.Clone()}
	for i, v := range board {
		if ParityOf(i) == Odd {
			h.OddSum += v
		} else {
			h.EvenSum += v
		}
	}

	h.Bias = Even
	if h.OddSum > h.EvenSum {
		h.Bias = Odd
	}
	return h, nil
}

func (h *HeuristicStrategy) Tag() Tag { return Heuristic }

func (h *HeuristicStrategy) Intro() string {
	return fmt.Sprintf("Since I am going first, I can use the odd-even strategy. "+
		"The sum of the odd-indexed numbers is %d while that of the even-indexed ones is %d. "+
		"So, I will try to pick the %s-indexed numbers. "+
		"This is a heuristic: it is not guaranteed to find the best possible score.",
		h.OddSum, h.EvenSum, h.Bias)
}

// Decide takes the open end whose parity matches the bias. When both or
// neither end match it takes the larger value, preferring left on equal values.
func (h *HeuristicStrategy) Decide(w game.Window) (Decision, error) {
	if err := checkWindow(h.board, w); err != nil {
		return Decision{}, err
	}

	leftValue, rightValue := h.board[w.Left], h.board[w.Right]

	if w.Left == w.Right {
		return Decision{
			End:       game.Left,
			Index:     w.Left,
			Value:     leftValue,
			Rationale: fmt.Sprintf("Only %d is left, so I take it.", leftValue),
		}, nil
	}

	leftMatch := ParityOf(w.Left) == h.Bias
	rightMatch := ParityOf(w.Right) == h.Bias

	switch {
	case leftMatch && !rightMatch:
		return h.matched(game.Left, w.Left), nil
	case rightMatch && !leftMatch:
		return h.matched(game.Right, w.Right), nil
	}

	end, index, value := game.Left, w.Left, leftValue
	if rightValue > leftValue {
		end, index, value = game.Right, w.Right, rightValue
	}

	which := "Neither end is"
	if leftMatch {
		which = "Both ends are"
	}
	reason := fmt.Sprintf("%s %s-indexed, so I fall back to the larger value: %d from the %s end.",
		which, h.Bias, value, end)
	if leftValue == rightValue {
		reason = fmt.Sprintf("%s %s-indexed and both ends are %d, so I take the left one.",
			which, h.Bias, value)
	}

	return Decision{End: end, Index: index, Value: value, Rationale: reason}, nil
}

func (h *HeuristicStrategy) matched(end game.End, index int) Decision {
	value := h.board[index]
	return Decision{
		End:   end,
		Index: index,
		Value: value,
		Rationale: fmt.Sprintf("%s is %s-indexed, matching my %s bias (odd sum %d, even sum %d), so I take %d from the %s end.",
			positionLabel(index), h.Bias, h.Bias, h.OddSum, h.EvenSum, value, end),
	}
}
