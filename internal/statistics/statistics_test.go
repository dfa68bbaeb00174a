package statistics

import (
	"math"
	"strings"
	"testing"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.MeanRegret() != 0 {
		t.Errorf("Expected regret of 0 for empty stats, got %f", stats.MeanRegret())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected empty stats to fail validation")
	}
}

func TestGameResult_MarginAndRegret(t *testing.T) {
	r := GameResult{Seat1Score: 16, Seat2Score: 6, OptimalMargin: 12}
	if r.Margin() != 10 {
		t.Errorf("Expected margin 10, got %d", r.Margin())
	}
	if r.Regret() != 2 {
		t.Errorf("Expected regret 2, got %d", r.Regret())
	}
}

func TestStatistics_MultipleGames(t *testing.T) {
	stats := &Statistics{}
	results := []GameResult{
		{Seat1Score: 10, Seat2Score: 9, OptimalMargin: 1},
		{Seat1Score: 8, Seat2Score: 11, OptimalMargin: 1},
		{Seat1Score: 12, Seat2Score: 9, OptimalMargin: 5},
		{Seat1Score: 7, Seat2Score: 7, OptimalMargin: 0},
		{Seat1Score: 5, Seat2Score: 6, OptimalMargin: 3},
	}
	for _, r := range results {
		stats.Add(r)
	}

	// margins: 1, -3, 3, 0, -1
	if math.Abs(stats.Mean()-0.0) > 1e-9 {
		t.Errorf("Expected mean of 0, got %f", stats.Mean())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0, got %f", stats.Median())
	}
	if stats.Seat1Wins != 2 || stats.Seat2Wins != 2 || stats.Ties != 1 {
		t.Errorf("Unexpected outcomes: %d/%d/%d", stats.Seat1Wins, stats.Seat2Wins, stats.Ties)
	}

	// regrets: 0, 4, 2, 0, 4
	if stats.SumRegret != 10 || stats.MaxRegret != 4 || stats.OptimalGames != 2 {
		t.Errorf("Unexpected regret tracking: sum=%d max=%d optimal=%d", stats.SumRegret, stats.MaxRegret, stats.OptimalGames)
	}
	if stats.MeanRegret() != 2 {
		t.Errorf("Expected mean regret 2, got %f", stats.MeanRegret())
	}

	// sample variance of {1,-3,3,0,-1} = 20/4
	if math.Abs(stats.Variance()-5) > 1e-9 {
		t.Errorf("Expected variance 5, got %f", stats.Variance())
	}
	low, high := stats.ConfidenceInterval95()
	if low >= 0 || high <= 0 {
		t.Errorf("Expected interval to straddle zero, got [%f, %f]", low, high)
	}

	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for i := 1; i <= 5; i++ {
		stats.Add(GameResult{Seat1Score: i})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.9, 4.6},
		{1, 5},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestStatistics_ValidateMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(GameResult{Seat1Score: 3, Seat2Score: 1})
	stats.Ties++

	err := stats.Validate()
	if err == nil || !strings.Contains(err.Error(), "outcomes total") {
		t.Errorf("Expected outcomes mismatch error, got %v", err)
	}
}
