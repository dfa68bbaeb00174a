// Package game implements the turn state machine for the pick-from-either-end
// number game.
//
// The main type is State, which owns the board, the window of values still
// available, per-seat scores, and whose turn it is. A game is created with
// NewState and mutated only through ApplyMove:
//
//	s, err := game.NewState(game.Board{4, 7, 2, 9})
//	if err != nil {
//	    return err
//	}
//	_ = s.ApplyMove(game.Seat1, game.Right) // seat 1 takes 9
//	_ = s.ApplyMove(game.Seat2, game.Left)  // seat 2 takes 4
//
// # Boards
//
// Boards must be non-empty, even-length and non-negative. Random boards
// can be generated with Generate, which accepts a *rand.Rand so that tests
// and simulations are reproducible:
//
//	rng := randutil.New(42)
//	board, err := game.Generate(rng, game.GeneratorConfig{Length: 14, MaxValue: 99})
//
// # Errors
//
// Every rejected operation returns an error wrapping one of ErrInvalidMove,
// ErrInvalidConfiguration or ErrEngineInternal and leaves the state untouched.
package game
