// Package simulator plays the heuristic first mover against the optimal
// second mover over many random boards.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/statistics"
	"github.com/lox/pickends/internal/strategy"
)

// Config holds configuration for running simulations
type Config struct {
	Games     int
	Generator game.GeneratorConfig
	Seed      int64
	Workers   int
	Logger    *log.Logger

	// Progress, when set, is called after each finished game.
	Progress func(done, total int)
}

// Report is the outcome of a simulation run.
type Report struct {
	Seed      int64                   `json:"seed"`
	Games     int                     `json:"games"`
	Generator game.GeneratorConfig    `json:"generator"`
	Seat1Wins int                     `json:"heuristicWins"`
	Seat2Wins int                     `json:"optimalWins"`
	Ties      int                     `json:"ties"`
	Mean      float64                 `json:"meanMargin"`
	StdDev    float64                 `json:"stdDevMargin"`
	CI95Low   float64                 `json:"ci95Low"`
	CI95High  float64                 `json:"ci95High"`
	Median    float64                 `json:"medianMargin"`
	Regret    float64                 `json:"meanRegret"`
	MaxRegret int                     `json:"maxRegret"`
	Optimal   int                     `json:"optimalGames"`
	Results   []statistics.GameResult `json:"results,omitempty"`
}

// Simulator runs self-play games
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every game and aggregates the results. Each game draws its board
// from its own derived seed, so results do not depend on scheduling.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("%w: games must be positive, got %d", game.ErrInvalidConfiguration, s.config.Games)
	}

	results := make([]statistics.GameResult, s.config.Games)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := range s.config.Games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := randutil.Derive(s.config.Seed, i)
			result, err := PlayGame(seed, s.config.Generator)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i, seed, err)
			}
			results[i] = result

			n := int(done.Add(1))
			if s.config.Progress != nil {
				s.config.Progress(n, s.config.Games)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	low, high := stats.ConfidenceInterval95()
	report := &Report{
		Seed:      s.config.Seed,
		Games:     stats.Games,
		Generator: s.config.Generator,
		Seat1Wins: stats.Seat1Wins,
		Seat2Wins: stats.Seat2Wins,
		Ties:      stats.Ties,
		Mean:      stats.Mean(),
		StdDev:    stats.StdDev(),
		CI95Low:   low,
		CI95High:  high,
		Median:    stats.Median(),
		Regret:    stats.MeanRegret(),
		MaxRegret: stats.MaxRegret,
		Optimal:   stats.OptimalGames,
		Results:   results,
	}

	s.config.Logger.Info("Simulation complete",
		"games", report.Games,
		"heuristicWins", report.Seat1Wins,
		"optimalWins", report.Seat2Wins,
		"ties", report.Ties,
		"meanMargin", fmt.Sprintf("%.2f", report.Mean))
	return report, nil
}

// PlayGame draws a board from seed and plays it out with the heuristic in
// seat 1 and the optimal strategy in seat 2.
func PlayGame(seed int64, cfg game.GeneratorConfig) (statistics.GameResult, error) {
	board, err := game.Generate(randutil.New(seed), cfg)
	if err != nil {
		return statistics.GameResult{}, err
	}

	state, err := game.NewState(board)
	if err != nil {
		return statistics.GameResult{}, err
	}
	first, err := strategy.NewHeuristic(board)
	if err != nil {
		return statistics.GameResult{}, err
	}
	second, err := strategy.NewTable(board, game.FullWindow(len(board)))
	if err != nil {
		return statistics.GameResult{}, err
	}
	forced, err := second.Value(0, len(board)-1)
	if err != nil {
		return statistics.GameResult{}, err
	}

	players := map[game.Seat]strategy.Strategy{
		game.Seat1: first,
		game.Seat2: second,
	}
	for !state.Finished() {
		seat := state.Turn()
		decision, err := players[seat].Decide(state.Window())
		if err != nil {
			return statistics.GameResult{}, err
		}
		if err := state.ApplyMove(seat, decision.End); err != nil {
			return statistics.GameResult{}, fmt.Errorf("%w: %v", game.ErrEngineInternal, err)
		}
	}

	return statistics.GameResult{
		Seed:          seed,
		BoardLength:   len(board),
		Seat1Score:    state.Score(game.Seat1),
		Seat2Score:    state.Score(game.Seat2),
		OptimalMargin: forced,
	}, nil
}
