package strategy

import (
	"fmt"

	"github.com/lox/pickends/internal/game"
)

// Table holds the exact solution of every sub-window of the window it was
// built over. value(i, j) is the largest advantage (own total minus the
// opponent's) the player to move can guarantee on [i, j]:
//
//	value(i, i) = board[i]
//	value(i, j) = max(board[i] - value(i+1, j), board[j] - value(i, j-1))
//
// A Table is read-only after construction and safe to share between
// goroutines.
type Table struct {
	board  game.Board
	window game.Window
	values [][]int // values[i-window.Left][j-window.Left]
}

// NewTable tabulates the window bottom-up by sub-window length, O(n²) entries
// with O(1) work each.
func NewTable(board game.Board, w game.Window) (*Table, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}
	if err := checkWindow(board, w); err != nil {
		return nil, err
	}

	n := w.Len()
	off := w.Left
	values := make([][]int, n)
	for i := range values {
		values[i] = make([]int, n)
		values[i][i] = board[off+i]
	}

	for length := 2; length <= n; length++ {
		for i := 0; i+length-1 < n; i++ {
			j := i + length - 1
			takeLeft := board[off+i] - values[i+1][j]
			takeRight := board[off+j] - values[i][j-1]
			values[i][j] = max(takeLeft, takeRight)
		}
	}

	return &Table{board: board.Clone(), window: w, values: values}, nil
}

func (t *Table) Tag() Tag { return Optimal }

func (t *Table) Intro() string {
	return "Since you are going first, I will play second and work out the best move on every turn " +
		"by solving every smaller stretch of the remaining numbers (dynamic programming)."
}

// Window returns the window the table was built over.
func (t *Table) Window() game.Window { return t.window }

// Covers reports whether w lies inside the table's window.
func (t *Table) Covers(w game.Window) bool {
	return !w.Empty() && w.Left >= t.window.Left && w.Right <= t.window.Right
}

// Value returns value(i, j) using absolute board indices.
func (t *Table) Value(i, j int) (int, error) {
	w := game.Window{Left: i, Right: j}
	if !t.Covers(w) {
		return 0, fmt.Errorf("%w: sub-window %s is empty or outside table window %s", game.ErrEngineInternal, w, t.window)
	}
	return t.values[i-t.window.Left][j-t.window.Left], nil
}

// Options returns the net advantage of taking each end of w: the value taken
// minus the opponent's best advantage on what remains.
func (t *Table) Options(w game.Window) (left, right int, err error) {
	if !t.Covers(w) {
		return 0, 0, fmt.Errorf("%w: window %s is empty or outside table window %s", game.ErrEngineInternal, w, t.window)
	}
	if w.Left == w.Right {
		v := t.board[w.Left]
		return v, v, nil
	}
	off := t.window.Left
	left = t.board[w.Left] - t.values[w.Left+1-off][w.Right-off]
	right = t.board[w.Right] - t.values[w.Left-off][w.Right-1-off]
	return left, right, nil
}

// Decide takes the end with the larger net advantage, preferring left on ties.
func (t *Table) Decide(w game.Window) (Decision, error) {
	left, right, err := t.Options(w)
	if err != nil {
		return Decision{}, err
	}

	if w.Left == w.Right {
		v := t.board[w.Left]
		return Decision{
			End:       game.Left,
			Index:     w.Left,
			Value:     v,
			Rationale: fmt.Sprintf("Only %d is left, so I take it.", v),
		}, nil
	}

	d := Decision{End: game.Left, Index: w.Left, Value: t.board[w.Left]}
	if left < right {
		d = Decision{End: game.Right, Index: w.Right, Value: t.board[w.Right]}
	}
	d.Rationale = t.explain(w, left, right, d)
	return d, nil
}

func (t *Table) explain(w game.Window, left, right int, d Decision) string {
	afterLeft := w.Without(game.Left)
	afterRight := w.Without(game.Right)
	oppLeft := t.values[afterLeft.Left-t.window.Left][afterLeft.Right-t.window.Left]
	oppRight := t.values[afterRight.Left-t.window.Left][afterRight.Right-t.window.Left]

	msg := fmt.Sprintf("Taking %d from the left leaves %s, where your best advantage is %s, so I would net %s. "+
		"Taking %d from the right leaves %s, where your best advantage is %s, so I would net %s. ",
		t.board[w.Left], formatValues(t.board.Slice(afterLeft)), signed(oppLeft), signed(left),
		t.board[w.Right], formatValues(t.board.Slice(afterRight)), signed(oppRight), signed(right))

	if left == right {
		return msg + fmt.Sprintf("Both net the same, so I take %d from the left end.", d.Value)
	}
	return msg + fmt.Sprintf("I take %d from the %s end.", d.Value, d.End)
}

// Line plays both seats optimally from w and returns every decision in order.
func (t *Table) Line(w game.Window) ([]Decision, error) {
	if !t.Covers(w) {
		return nil, fmt.Errorf("%w: window %s is empty or outside table window %s", game.ErrEngineInternal, w, t.window)
	}
	line := make([]Decision, 0, w.Len())
	for !w.Empty() {
		d, err := t.Decide(w)
		if err != nil {
			return nil, err
		}
		line = append(line, d)
		w = w.Without(d.End)
	}
	return line, nil
}

// Rows returns a copy of the tabulated values. Row i, column j holds
// value(Window().Left+i, Window().Left+j); cells with j < i are zero.
func (t *Table) Rows() [][]int {
	rows := make([][]int, len(t.values))
	for i := range rows {
		rows[i] = make([]int, len(t.values[i]))
		copy(rows[i], t.values[i])
	}
	return rows
}
