// Package statistics aggregates self-play results: win counts for each seat
// and the distribution of the first mover's margin.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult is the outcome of one self-play game.
type GameResult struct {
	Seed          int64 `json:"seed"`          // RNG seed the board was drawn from
	BoardLength   int   `json:"boardLength"`   // number of values on the board
	Seat1Score    int   `json:"seat1Score"`    // total collected by the first mover
	Seat2Score    int   `json:"seat2Score"`    // total collected by the second mover
	OptimalMargin int   `json:"optimalMargin"` // best margin seat 1 could force
}

// Margin returns seat 1's score minus seat 2's.
func (r GameResult) Margin() int {
	return r.Seat1Score - r.Seat2Score
}

// Regret returns how far seat 1 fell short of its forced margin.
func (r GameResult) Regret() int {
	return r.OptimalMargin - r.Margin()
}

// Statistics tracks margins over many games
type Statistics struct {
	Games      int
	SumMargin  float64
	SumMargin2 float64   // Sum of squares for variance calculation
	Values     []float64 // Every margin, for median and percentiles

	Seat1Wins int
	Seat2Wins int
	Ties      int

	SumRegret int
	MaxRegret int
	// Games where seat 1 matched the forced margin exactly
	OptimalGames int
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	margin := float64(result.Margin())
	s.Games++
	s.SumMargin += margin
	s.SumMargin2 += margin * margin
	s.Values = append(s.Values, margin)

	switch {
	case margin > 0:
		s.Seat1Wins++
	case margin < 0:
		s.Seat2Wins++
	default:
		s.Ties++
	}

	regret := result.Regret()
	s.SumRegret += regret
	if regret > s.MaxRegret {
		s.MaxRegret = regret
	}
	if regret == 0 {
		s.OptimalGames++
	}
}

// Mean returns the mean margin per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumMargin / float64(s.Games)
}

// MeanRegret returns the mean shortfall against the forced margin
func (s *Statistics) MeanRegret() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.SumRegret) / float64(s.Games)
}

// Variance returns the sample variance of the margins
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumMargin2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of the margins
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median margin
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the margin at p (0.0 to 1.0), interpolating linearly
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)", len(s.Values), s.Games)
	}
	if total := s.Seat1Wins + s.Seat2Wins + s.Ties; total != s.Games {
		return fmt.Errorf("outcomes total (%d) does not match games count (%d)", total, s.Games)
	}
	if s.OptimalGames > s.Games {
		return fmt.Errorf("optimal games (%d) exceeds games count (%d)", s.OptimalGames, s.Games)
	}
	return nil
}
