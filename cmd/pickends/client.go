package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lox/pickends/cmd/pickends/shared"
	"github.com/lox/pickends/internal/client"
	"github.com/lox/pickends/internal/game"
)

// ClientCmd plays a game on a running server over WebSocket
type ClientCmd struct {
	Server   string        `kong:"default='http://localhost:8080',help='Server base URL'"`
	Seat     int           `kong:"default='1',help='Your seat (1 or 2); seat 1 moves first'"`
	Board    []int         `kong:"help='Explicit board values, comma separated'"`
	Length   int           `kong:"help='Board length when the server generates the board'"`
	Auto     bool          `kong:"help='Let the client play your seat with the computer strategy for that seat'"`
	Timeout  time.Duration `kong:"default='10s',help='Connection timeout'"`
	LogLevel string        `kong:"default='warn',enum='debug,info,warn,error',help='Log level'"`
}

func (c *ClientCmd) Run() error {
	logger := shared.SetupLogger(c.LogLevel)
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	connectCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cl := client.NewClient(strings.TrimSpace(c.Server), logger)
	if err := cl.Connect(connectCtx); err != nil {
		return err
	}
	defer func() { _ = cl.Disconnect() }()

	var player client.Player = client.NewPromptPlayer(os.Stdin, os.Stdout)
	if c.Auto {
		player = client.AutoPlayer{Out: os.Stdout}
	}

	over, err := cl.Play(ctx, client.GameConfig{
		Seat:        game.Seat(c.Seat),
		Board:       c.Board,
		BoardLength: c.Length,
		Player:      player,
		Out:         os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("game failed: %w", err)
	}
	logger.Info("Game over", "result", over.Result)
	return nil
}
