// Package session owns live games. A Controller wraps one game.State with
// the computer's strategy and serialises moves; a Manager keeps the
// controllers for concurrent, isolated sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/strategy"
)

var (
	// ErrBusy is returned when a move or decision is already in flight.
	ErrBusy = errors.New("session busy")

	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

// Speaker identifies who a transcript entry is attributed to.
type Speaker string

const (
	SpeakerComputer Speaker = "computer"
	SpeakerPlayer   Speaker = "player"
	SpeakerSystem   Speaker = "system"
)

// Entry is one line of the explanation transcript.
type Entry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Config holds the per-controller collaborators.
type Config struct {
	ThinkDelay time.Duration
	Clock      quartz.Clock
	Logger     *log.Logger
}

// MoveResult is the bookkeeping after any applied move.
type MoveResult struct {
	Seat     game.Seat         `json:"seat"`
	End      game.End          `json:"end"`
	Index    int               `json:"index"`
	Value    int               `json:"value"`
	Window   game.Window       `json:"window"`
	Scores   map[game.Seat]int `json:"scores"`
	Turn     game.Seat         `json:"turn"`
	Finished bool              `json:"finished"`
	Result   string            `json:"result,omitempty"`
}

// ComputerResult is a MoveResult with the rationale behind it.
type ComputerResult struct {
	MoveResult
	Rationale string `json:"rationale"`
}

// Controller serialises moves on a single game. At most one move or
// decision may be outstanding; others are rejected with ErrBusy.
type Controller struct {
	id           string
	humanSeat    game.Seat
	computerSeat game.Seat
	strategy     strategy.Strategy
	thinkDelay   time.Duration
	clock        quartz.Clock
	logger       *log.Logger

	busy     atomic.Bool
	thinking atomic.Bool

	mu         sync.RWMutex
	state      *game.State
	transcript []Entry
	lastActive time.Time
}

// New starts a game on board with the human in humanSeat.
func New(id string, humanSeat game.Seat, board game.Board, cfg Config) (*Controller, error) {
	if !humanSeat.Valid() {
		return nil, fmt.Errorf("%w: human seat must be 1 or 2, got %d", game.ErrInvalidConfiguration, int(humanSeat))
	}

	state, err := game.NewState(board)
	if err != nil {
		return nil, err
	}

	computerSeat := humanSeat.Other()
	strat, err := strategy.New(strategy.TagForComputer(computerSeat), board)
	if err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	c := &Controller{
		id:           id,
		humanSeat:    humanSeat,
		computerSeat: computerSeat,
		strategy:     strat,
		thinkDelay:   cfg.ThinkDelay,
		clock:        clock,
		logger:       logger.WithPrefix("session").With("game", id),
		state:        state,
		transcript:   []Entry{{Speaker: SpeakerComputer, Text: strat.Intro()}},
		lastActive:   clock.Now(),
	}

	c.logger.Info("Game started",
		"board", board.String(),
		"humanSeat", int(humanSeat),
		"strategy", strat.Tag())

	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// HumanSeat returns the seat the human plays.
func (c *Controller) HumanSeat() game.Seat { return c.humanSeat }

// ComputerSeat returns the seat the computer plays.
func (c *Controller) ComputerSeat() game.Seat { return c.computerSeat }

// Strategy returns the algorithm the computer uses this game.
func (c *Controller) Strategy() strategy.Tag { return c.strategy.Tag() }

// Busy reports whether a move or decision is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Thinking reports whether the computer is waiting out its think delay.
func (c *Controller) Thinking() bool { return c.thinking.Load() }

// ComputerToMove reports whether the game is in progress and waiting on the computer.
func (c *Controller) ComputerToMove() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Status() == game.InProgress && c.state.Turn() == c.computerSeat
}

// ApplyHumanMove applies the human's choice of board index.
func (c *Controller) ApplyHumanMove(index int) (MoveResult, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return MoveResult{}, ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status() == game.InProgress && c.state.Turn() != c.humanSeat {
		return MoveResult{}, fmt.Errorf("%w: waiting on the computer", game.ErrInvalidMove)
	}

	end, err := c.state.ApplyIndex(c.humanSeat, index)
	if err != nil {
		c.logger.Debug("Rejected human move", "index", index, "error", err)
		return MoveResult{}, err
	}

	res := c.resultLocked(c.humanSeat, end)
	c.transcript = append(c.transcript, Entry{Speaker: SpeakerPlayer, Text: fmt.Sprintf("I pick %d.", res.Value)})
	c.finishLocked()
	c.lastActive = c.clock.Now()

	c.logger.Info("Human moved", "index", res.Index, "value", res.Value, "window", res.Window.String())
	return res, nil
}

// ComputerMove waits out the think delay, asks the strategy for a decision
// over the current window and applies it. Cancelling ctx during the delay
// abandons the move without touching the game.
func (c *Controller) ComputerMove(ctx context.Context) (ComputerResult, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return ComputerResult{}, ErrBusy
	}
	defer c.busy.Store(false)

	if !c.ComputerToMove() {
		return ComputerResult{}, fmt.Errorf("%w: it is not the computer's turn", game.ErrInvalidMove)
	}

	if c.thinkDelay > 0 {
		if err := c.think(ctx); err != nil {
			return ComputerResult{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	decision, err := c.strategy.Decide(c.state.Window())
	if err != nil {
		c.logger.Error("Strategy failed", "error", err)
		return ComputerResult{}, err
	}
	if err := c.state.ApplyMove(c.computerSeat, decision.End); err != nil {
		c.logger.Error("Strategy chose an illegal move", "end", decision.End, "error", err)
		return ComputerResult{}, fmt.Errorf("%w: %v", game.ErrEngineInternal, err)
	}

	res := ComputerResult{MoveResult: c.resultLocked(c.computerSeat, decision.End), Rationale: decision.Rationale}
	c.transcript = append(c.transcript, Entry{Speaker: SpeakerComputer, Text: decision.Rationale})
	c.finishLocked()
	c.lastActive = c.clock.Now()

	c.logger.Info("Computer moved",
		"strategy", c.strategy.Tag(),
		"index", res.Index,
		"value", res.Value,
		"window", res.Window.String())
	return res, nil
}

func (c *Controller) think(ctx context.Context) error {
	fired := make(chan struct{})
	timer := c.clock.AfterFunc(c.thinkDelay, func() {
		close(fired)
	}, "session", "think")
	defer timer.Stop()

	c.thinking.Store(true)
	defer c.thinking.Store(false)

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		c.logger.Debug("Computer move cancelled", "error", ctx.Err())
		return ctx.Err()
	}
}

func (c *Controller) resultLocked(seat game.Seat, end game.End) MoveResult {
	moves := c.state.Moves()
	last := moves[len(moves)-1]
	res := MoveResult{
		Seat:     seat,
		End:      end,
		Index:    last.Index,
		Value:    last.Value,
		Window:   c.state.Window(),
		Scores:   c.state.Scores(),
		Turn:     c.state.Turn(),
		Finished: c.state.Finished(),
	}
	if res.Finished {
		res.Result = c.state.Result().String()
	}
	return res
}

func (c *Controller) finishLocked() {
	if !c.state.Finished() {
		return
	}
	result := c.state.Result()
	c.transcript = append(c.transcript, Entry{Speaker: SpeakerSystem, Text: result.String()})
	c.logger.Info("Game over",
		"result", result.String(),
		"seat1", c.state.Score(game.Seat1),
		"seat2", c.state.Score(game.Seat2))
}

// LastActive returns when the session last accepted a move.
func (c *Controller) LastActive() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActive
}

// Snapshot is a read-only projection of a session for rendering.
type Snapshot struct {
	ID           string            `json:"id"`
	Board        game.Board        `json:"board"`
	Window       game.Window       `json:"window"`
	Scores       map[game.Seat]int `json:"scores"`
	Turn         game.Seat         `json:"turn"`
	Status       string            `json:"status"`
	Finished     bool              `json:"finished"`
	Result       string            `json:"result,omitempty"`
	Winner       game.Seat         `json:"winner,omitempty"`
	HumanSeat    game.Seat         `json:"humanSeat"`
	ComputerSeat game.Seat         `json:"computerSeat"`
	Strategy     strategy.Tag      `json:"strategy"`
	Moves        []game.Move       `json:"moves"`
	Transcript   []Entry           `json:"transcript"`
}

// Snapshot returns the current state of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	transcript := make([]Entry, len(c.transcript))
	copy(transcript, c.transcript)

	s := Snapshot{
		ID:           c.id,
		Board:        c.state.Board(),
		Window:       c.state.Window(),
		Scores:       c.state.Scores(),
		Turn:         c.state.Turn(),
		Status:       c.state.Status().String(),
		Finished:     c.state.Finished(),
		HumanSeat:    c.humanSeat,
		ComputerSeat: c.computerSeat,
		Strategy:     c.strategy.Tag(),
		Moves:        c.state.Moves(),
		Transcript:   transcript,
	}
	if s.Finished {
		s.Result = c.state.Result().String()
		s.Winner = c.state.Result().Winner()
	}
	return s
}
