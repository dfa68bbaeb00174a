package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/strategy"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestController(t *testing.T, humanSeat game.Seat, board game.Board, cfg Config) *Controller {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testLogger()
	}
	c, err := New("test-game", humanSeat, board, cfg)
	require.NoError(t, err)
	return c
}

func TestNewController(t *testing.T) {
	t.Run("computer takes the other seat", func(t *testing.T) {
		c := newTestController(t, game.Seat2, game.Board{4, 7, 2, 9}, Config{})
		assert.Equal(t, game.Seat1, c.ComputerSeat())
		assert.Equal(t, strategy.Heuristic, c.Strategy())
		assert.True(t, c.ComputerToMove())

		c = newTestController(t, game.Seat1, game.Board{4, 7, 2, 9}, Config{})
		assert.Equal(t, game.Seat2, c.ComputerSeat())
		assert.Equal(t, strategy.Optimal, c.Strategy())
		assert.False(t, c.ComputerToMove())
	})

	t.Run("transcript opens with the strategy intro", func(t *testing.T) {
		c := newTestController(t, game.Seat2, game.Board{4, 7, 2, 9}, Config{})
		snap := c.Snapshot()
		require.Len(t, snap.Transcript, 1)
		assert.Equal(t, SpeakerComputer, snap.Transcript[0].Speaker)
		assert.Contains(t, snap.Transcript[0].Text, "odd-even strategy")
	})

	t.Run("rejects bad seat", func(t *testing.T) {
		_, err := New("x", game.Seat(3), game.Board{1, 2}, Config{Logger: testLogger()})
		assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
	})

	t.Run("rejects bad board", func(t *testing.T) {
		_, err := New("x", game.Seat1, game.Board{1, 2, 3}, Config{Logger: testLogger()})
		assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
	})
}

func TestControllerHeuristicGame(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, game.Seat2, game.Board{4, 7, 2, 9}, Config{})

	_, err := c.ApplyHumanMove(0)
	require.ErrorIs(t, err, game.ErrInvalidMove, "human cannot move before the computer")

	res, err := c.ComputerMove(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.Right, res.End)
	assert.Equal(t, 9, res.Value)
	assert.Equal(t, game.Window{Left: 0, Right: 2}, res.Window)
	assert.Equal(t, game.Seat2, res.Turn)
	assert.NotEmpty(t, res.Rationale)

	_, err = c.ComputerMove(ctx)
	require.ErrorIs(t, err, game.ErrInvalidMove, "computer cannot move twice")

	_, err = c.ApplyHumanMove(1)
	require.ErrorIs(t, err, game.ErrInvalidMove, "index 1 is not an open end")

	human, err := c.ApplyHumanMove(0)
	require.NoError(t, err)
	assert.Equal(t, 4, human.Value)
	assert.Equal(t, game.Left, human.End)

	res, err = c.ComputerMove(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Value)

	human, err = c.ApplyHumanMove(2)
	require.NoError(t, err)
	assert.True(t, human.Finished)
	assert.Equal(t, "Player 1 wins!", human.Result)
	assert.Equal(t, map[game.Seat]int{game.Seat1: 16, game.Seat2: 6}, human.Scores)

	_, err = c.ApplyHumanMove(2)
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	_, err = c.ComputerMove(ctx)
	assert.ErrorIs(t, err, game.ErrInvalidMove)

	snap := c.Snapshot()
	assert.Equal(t, "finished", snap.Status)
	assert.Equal(t, game.Seat1, snap.Winner)
	assert.Len(t, snap.Moves, 4)

	// intro, four moves, result
	require.Len(t, snap.Transcript, 6)
	assert.Equal(t, Entry{Speaker: SpeakerPlayer, Text: "I pick 4."}, snap.Transcript[2])
	assert.Equal(t, Entry{Speaker: SpeakerSystem, Text: "Player 1 wins!"}, snap.Transcript[5])
}

func TestControllerOptimalReply(t *testing.T) {
	c := newTestController(t, game.Seat1, game.Board{4, 7, 2, 9}, Config{})

	_, err := c.ApplyHumanMove(0)
	require.NoError(t, err)
	require.True(t, c.ComputerToMove())

	res, err := c.ComputerMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.Right, res.End)
	assert.Equal(t, 9, res.Value)
	assert.Contains(t, res.Rationale, "I take 9 from the right end")
}

func TestControllerThinkDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	c := newTestController(t, game.Seat2, game.Board{4, 7, 2, 9}, Config{
		ThinkDelay: time.Second,
		Clock:      mClock,
	})

	type outcome struct {
		res ComputerResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.ComputerMove(ctx)
		done <- outcome{res, err}
	}()

	require.Eventually(t, c.Thinking, time.Second, time.Millisecond)
	assert.True(t, c.Busy())

	_, err := c.ApplyHumanMove(0)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.ComputerMove(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	mClock.Advance(time.Second).MustWait(ctx)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, 9, out.res.Value)
	case <-ctx.Done():
		t.Fatal("computer move did not complete")
	}
	assert.False(t, c.Busy())
	assert.False(t, c.Thinking())
}

func TestControllerCancelledThink(t *testing.T) {
	mClock := quartz.NewMock(t)
	c := newTestController(t, game.Seat2, game.Board{4, 7, 2, 9}, Config{
		ThinkDelay: time.Second,
		Clock:      mClock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.ComputerMove(ctx)
		done <- err
	}()

	require.Eventually(t, c.Thinking, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled move did not return")
	}

	snap := c.Snapshot()
	assert.Empty(t, snap.Moves)
	assert.Equal(t, game.Window{Left: 0, Right: 3}, snap.Window)
	assert.True(t, c.ComputerToMove())
	assert.False(t, c.Busy())
}

func TestControllerLastActive(t *testing.T) {
	mClock := quartz.NewMock(t)
	c := newTestController(t, game.Seat1, game.Board{4, 7, 2, 9}, Config{Clock: mClock})
	started := c.LastActive()

	mClock.Advance(time.Minute)
	_, err := c.ApplyHumanMove(3)
	require.NoError(t, err)
	assert.Equal(t, started.Add(time.Minute), c.LastActive())
}

func TestSnapshotIsCopy(t *testing.T) {
	c := newTestController(t, game.Seat1, game.Board{4, 7, 2, 9}, Config{})
	snap := c.Snapshot()
	snap.Board[0] = 100
	snap.Transcript[0].Text = "changed"

	again := c.Snapshot()
	assert.Equal(t, 4, again.Board[0])
	assert.NotEqual(t, "changed", again.Transcript[0].Text)
}
