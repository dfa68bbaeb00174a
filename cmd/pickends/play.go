package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/pickends/cmd/pickends/shared"
	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/gameid"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/session"
	"github.com/lox/pickends/internal/tui"
)

// PlayCmd runs an interactive game in the terminal
type PlayCmd struct {
	ConfigFlags `embed:""`

	Seat    int    `kong:"default='1',help='Your seat (1 or 2); seat 1 moves first'"`
	Board   []int  `kong:"help='Explicit board values, comma separated'"`
	NoColor bool   `kong:"help='Disable colour output'"`
	LogFile string `kong:"default='pickends-play.log',help='File that receives debug logs while the TUI owns the terminal'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := shared.SetupLoggerTo(logFile, "debug")

	board := game.Board(c.Board)
	if len(board) == 0 {
		seed, rng := randutil.Resolve(c.Seed)
		logger.Info("Generating board", "seed", seed)
		board, err = game.Generate(rng, cfg.Game.GeneratorConfig())
		if err != nil {
			return err
		}
	}

	ctrl, err := session.New(gameid.Generate(), game.Seat(c.Seat), board, session.Config{
		ThinkDelay: cfg.Game.ThinkDelay(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(ctrl, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	snap := ctrl.Snapshot()
	if snap.Finished {
		fmt.Printf("%s  You %d, computer %d.\n", snap.Result, snap.Scores[snap.HumanSeat], snap.Scores[snap.ComputerSeat])
	}
	return nil
}
