package game

import "errors"

var (
	// ErrInvalidConfiguration is returned when a game cannot be started
	// with the supplied board.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidMove is returned for moves out of turn, on a closed end,
	// or after the game has finished.
	ErrInvalidMove = errors.New("invalid move")

	// ErrEngineInternal is returned when a strategy is asked to evaluate
	// an empty or inverted window.
	ErrEngineInternal = errors.New("engine internal error")
)
