package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// Board is the immutable sequence of values laid out at the start of a game.
type Board []int

// Validate checks that the board can host a game: non-empty, even length
// and no negative values.
func (b Board) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: board is empty", ErrInvalidConfiguration)
	}
	if len(b)%2 != 0 {
		return fmt.Errorf("%w: board length %d is odd", ErrInvalidConfiguration, len(b))
	}
	for i, v := range b {
		if v < 0 {
			return fmt.Errorf("%w: value %d at index %d is negative", ErrInvalidConfiguration, v, i)
		}
	}
	return nil
}

// Sum returns the total of all values on the board.
func (b Board) Sum() int {
	total := 0
	for _, v := range b {
		total += v
	}
	return total
}

// Clone returns a copy that shares no memory with b.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// Slice returns the values inside w. An empty window yields an empty slice.
func (b Board) Slice(w Window) []int {
	if w.Empty() {
		return []int{}
	}
	return b[w.Left : w.Right+1]
}

func (b Board) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Window is the inclusive range of board indices still available.
// The window is empty once Left > Right.
type Window struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// FullWindow returns the window covering a board of length n.
func FullWindow(n int) Window {
	return Window{Left: 0, Right: n - 1}
}

// Empty reports whether no values remain.
func (w Window) Empty() bool {
	return w.Left > w.Right
}

// Len returns the number of values remaining.
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return w.Right - w.Left + 1
}

// ValidFor reports whether w satisfies 0 <= left <= right+1 <= n.
func (w Window) ValidFor(n int) bool {
	return w.Left >= 0 && w.Left <= w.Right+1 && w.Right+1 <= n
}

// Index returns the board index at the given end.
func (w Window) Index(end End) int {
	if end == Left {
		return w.Left
	}
	return w.Right
}

// Without returns the window left after removing the value at end.
func (w Window) Without(end End) Window {
	if end == Left {
		return Window{Left: w.Left + 1, Right: w.Right}
	}
	return Window{Left: w.Left, Right: w.Right - 1}
}

func (w Window) String() string {
	return fmt.Sprintf("(%d,%d)", w.Left, w.Right)
}

// End names one of the two open boundaries of a window.
type End int

const (
	Left End = iota
	Right
)

func (e End) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("End(%d)", int(e))
	}
}

func (e End) MarshalText() ([]byte, error) {
	if e != Left && e != Right {
		return nil, fmt.Errorf("%w: unknown end %d", ErrInvalidMove, int(e))
	}
	return []byte(e.String()), nil
}

func (e *End) UnmarshalText(text []byte) error {
	parsed, err := ParseEnd(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseEnd converts "left" or "right" into an End.
func ParseEnd(s string) (End, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return Left, fmt.Errorf("%w: unknown end %q", ErrInvalidMove, s)
	}
}

// Seat identifies a player. Seat1 always moves first.
type Seat int

const (
	Seat1 Seat = 1
	Seat2 Seat = 2
)

// Valid reports whether s is Seat1 or Seat2.
func (s Seat) Valid() bool {
	return s == Seat1 || s == Seat2
}

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	return 3 - s
}

func (s Seat) String() string {
	return fmt.Sprintf("Player %d", int(s))
}

// Generator kinds understood by Generate.
const (
	GeneratorRandom      = "random"
	GeneratorPermutation = "permutation"
)

// GeneratorConfig controls board generation.
type GeneratorConfig struct {
	Length   int
	MaxValue int
	Kind     string
}

// Generate builds a board using rng.
//
// The random kind draws values in [1, MaxValue] and redraws until the total
// is odd, which rules out a tied game. The permutation kind shuffles 1..Length.
func Generate(rng *rand.Rand, cfg GeneratorConfig) (Board, error) {
	if cfg.Length <= 0 || cfg.Length%2 != 0 {
		return nil, fmt.Errorf("%w: board length must be a positive even number, got %d", ErrInvalidConfiguration, cfg.Length)
	}

	switch cfg.Kind {
	case GeneratorPermutation:
		board := make(Board, cfg.Length)
		for i := range board {
			board[i] = i + 1
		}
		rng.Shuffle(len(board), func(i, j int) { board[i], board[j] = board[j], board[i] })
		return board, nil

	case GeneratorRandom, "":
		if cfg.MaxValue < 1 {
			return nil, fmt.Errorf("%w: max value must be at least 1, got %d", ErrInvalidConfiguration, cfg.MaxValue)
		}
		if cfg.MaxValue == 1 {
			// Every value is 1 and the length is even, so an odd total is impossible.
			return nil, fmt.Errorf("%w: max value 1 cannot produce an odd total", ErrInvalidConfiguration)
		}
		board := make(Board, cfg.Length)
		for {
			for i := range board {
				board[i] = 1 + rng.IntN(cfg.MaxValue)
			}
			if board.Sum()%2 == 1 {
				break
			}
		}
		rng.Shuffle(len(board), func(i, j int) { board[i], board[j] = board[j], board[i] })
		return board, nil

	default:
		return nil, fmt.Errorf("%w: unknown generator %q", ErrInvalidConfiguration, cfg.Kind)
	}
}
