package game

import "fmt"

// Status is the lifecycle phase of a game.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Finished
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a finished game.
type Result int

const (
	Undecided Result = iota
	Seat1Wins
	Seat2Wins
	Tie
)

func (r Result) String() string {
	switch r {
	case Seat1Wins:
		return "Player 1 wins!"
	case Seat2Wins:
		return "Player 2 wins!"
	case Tie:
		return "It's a tie!"
	default:
		return "Undecided"
	}
}

// Winner returns the winning seat, or zero for a tie or undecided game.
func (r Result) Winner() Seat {
	switch r {
	case Seat1Wins:
		return Seat1
	case Seat2Wins:
		return Seat2
	default:
		return 0
	}
}

// Move records one applied move.
type Move struct {
	Seat  Seat `json:"seat"`
	End   End  `json:"end"`
	Index int  `json:"index"`
	Value int  `json:"value"`
}

// State is the authoritative record of a single game. It is not safe for
// concurrent use; the owner serialises access.
type State struct {
	board  Board
	window Window
	scores [3]int // indexed by Seat; slot 0 unused
	turn   Seat
	status Status
	moves  []Move
}

// NewState starts a game on a copy of board.
func NewState(board Board) (*State, error) {
	s := &State{}
	if err := s.Start(board); err != nil {
		return nil, err
	}
	return s, nil
}

// Start moves a NotStarted game to InProgress.
func (s *State) Start(board Board) error {
	if s.status != NotStarted {
		return fmt.Errorf("%w: game already started", ErrInvalidConfiguration)
	}
	if err := board.Validate(); err != nil {
		return err
	}

	s.board = board.Clone()
	s.window = FullWindow(len(board))
	s.scores = [3]int{}
	s.turn = Seat1
	s.status = InProgress
	s.moves = make([]Move, 0, len(board))
	return nil
}

// ApplyMove removes the value at end for player. The score, window and turn
// change together or not at all.
func (s *State) ApplyMove(player Seat, end End) error {
	if s.status != InProgress {
		return fmt.Errorf("%w: game is %s", ErrInvalidMove, s.status)
	}
	if !player.Valid() {
		return fmt.Errorf("%w: unknown seat %d", ErrInvalidMove, int(player))
	}
	if player != s.turn {
		return fmt.Errorf("%w: it is %s's turn, not %s's", ErrInvalidMove, s.turn, player)
	}
	if !s.isOpen(end) {
		return fmt.Errorf("%w: %s end is closed in window %s", ErrInvalidMove, end, s.window)
	}

	index := s.window.Index(end)
	value := s.board[index]

	s.scores[player] += value
	s.window = s.window.Without(end)
	s.moves = append(s.moves, Move{Seat: player, End: end, Index: index, Value: value})

	if s.window.Empty() {
		s.status = Finished
		s.turn = 0
	} else {
		s.turn = player.Other()
	}
	return nil
}

// ApplyIndex resolves a board index to an open end and applies it.
// When only one value remains it is taken as the left end.
func (s *State) ApplyIndex(player Seat, index int) (End, error) {
	if s.status != InProgress {
		return Left, fmt.Errorf("%w: game is %s", ErrInvalidMove, s.status)
	}
	var end End
	switch index {
	case s.window.Left:
		end = Left
	case s.window.Right:
		end = Right
	default:
		return Left, fmt.Errorf("%w: index %d is not an open end of window %s", ErrInvalidMove, index, s.window)
	}
	return end, s.ApplyMove(player, end)
}

func (s *State) isOpen(end End) bool {
	if s.window.Empty() {
		return false
	}
	switch end {
	case Left:
		return true
	case Right:
		return s.window.Left != s.window.Right
	default:
		return false
	}
}

// Board returns a copy of the board.
func (s *State) Board() Board { return s.board.Clone() }

// Window returns the current window.
func (s *State) Window() Window { return s.window }

// Remaining returns the values still on the board.
func (s *State) Remaining() []int {
	out := make([]int, s.window.Len())
	copy(out, s.board.Slice(s.window))
	return out
}

// Score returns the total for seat, or zero for an unknown seat.
func (s *State) Score(seat Seat) int {
	if !seat.Valid() {
		return 0
	}
	return s.scores[seat]
}

// Scores returns both totals keyed by seat.
func (s *State) Scores() map[Seat]int {
	return map[Seat]int{Seat1: s.scores[Seat1], Seat2: s.scores[Seat2]}
}

// Turn returns the seat to move, or zero once the game has finished.
func (s *State) Turn() Seat { return s.turn }

// Status returns the lifecycle phase.
func (s *State) Status() Status { return s.status }

// Finished reports whether every value has been claimed.
func (s *State) Finished() bool { return s.status == Finished }

// Moves returns a copy of the applied moves in order.
func (s *State) Moves() []Move {
	out := make([]Move, len(s.moves))
	copy(out, s.moves)
	return out
}

// Result compares the scores of a finished game.
func (s *State) Result() Result {
	if s.status != Finished {
		return Undecided
	}
	switch {
	case s.scores[Seat1] > s.scores[Seat2]:
		return Seat1Wins
	case s.scores[Seat2] > s.scores[Seat1]:
		return Seat2Wins
	default:
		return Tie
	}
}
