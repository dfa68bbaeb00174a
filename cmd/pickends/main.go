package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Serve games over HTTP and WebSocket"`
	Play     PlayCmd          `cmd:"" help:"Play against the computer in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Pit the heuristic first mover against the optimal second mover"`
	Solve    SolveCmd         `cmd:"" help:"Print the optimal-play table and line for a board"`
	Client   ClientCmd        `cmd:"" help:"Play against a running server over WebSocket"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pickends"),
		kong.Description("Take a number from either end; the computer explains every move"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
