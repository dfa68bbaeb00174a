package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// SetupSignalHandlerWithLogger returns a context cancelled by the first
// SIGINT or SIGTERM. A second signal exits immediately.
func SetupSignalHandlerWithLogger(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signals
		logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
		cancel()

		sig = <-signals
		logger.Warn("Received second signal, exiting", "signal", sig.String())
		os.Exit(130)
	}()

	return ctx
}
