package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/pickends/cmd/pickends/shared"
	"github.com/lox/pickends/internal/fileutil"
	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/simulator"
)

// SimulateCmd plays heuristic-vs-optimal self-play over random boards
type SimulateCmd struct {
	Games     int    `kong:"default='1000',help='Number of games to play'"`
	Length    int    `kong:"default='14',help='Board length'"`
	MaxValue  int    `kong:"default='99',help='Largest value on a random board'"`
	Generator string `kong:"default='random',enum='random,permutation',help='Board generator'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Workers   int    `kong:"default='0',help='Parallel workers (0 uses GOMAXPROCS)'"`
	Output    string `kong:"short='o',help='Write the report as JSON to this file'"`
	Detailed  bool   `kong:"help='Include every game in the JSON report'"`
	Quiet     bool   `kong:"short='q',help='Hide the progress dots'"`
	NoColor   bool   `kong:"help='Disable colour output'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
}

var (
	summaryTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	summaryLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Width(22)
)

func (c *SimulateCmd) Run() error {
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	level := "warn"
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level)
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	seed, _ := randutil.Resolve(c.Seed)
	cfg := simulator.Config{
		Games: c.Games,
		Generator: game.GeneratorConfig{
			Length:   c.Length,
			MaxValue: c.MaxValue,
			Kind:     c.Generator,
		},
		Seed:    seed,
		Workers: c.Workers,
		Logger:  logger,
	}
	if !c.Quiet {
		cfg.Progress = newDotProgress(os.Stdout, 40).update
	}

	report, err := simulator.New(cfg).Run(ctx)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report)

	if c.Output != "" {
		if !c.Detailed {
			report.Results = nil
		}
		if err := fileutil.WriteJSONAtomic(c.Output, report, 0o644); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", c.Output)
	}
	return nil
}

func printReport(w io.Writer, r *simulator.Report) {
	line := func(label, value string) {
		_, _ = fmt.Fprintf(w, "%s %s\n", summaryLabel.Render(label), value)
	}
	pct := func(n int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(r.Games))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, summaryTitle.Render("Heuristic (seat 1) vs optimal (seat 2)"))
	line("Seed", fmt.Sprintf("%d", r.Seed))
	line("Boards", fmt.Sprintf("%d × %s, length %d", r.Games, r.Generator.Kind, r.Generator.Length))
	line("Heuristic wins", pct(r.Seat1Wins))
	line("Optimal wins", pct(r.Seat2Wins))
	line("Ties", pct(r.Ties))
	line("Mean margin", fmt.Sprintf("%+.2f (95%% CI %+.2f to %+.2f)", r.Mean, r.CI95Low, r.CI95High))
	line("Median margin", fmt.Sprintf("%+.1f", r.Median))
	line("Std dev", fmt.Sprintf("%.2f", r.StdDev))
	line("Mean regret", fmt.Sprintf("%.2f (max %d)", r.Regret, r.MaxRegret))
	line("Matched optimal", pct(r.Optimal))
}
