package main

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pickends/cmd/pickends/shared"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/server"
	"github.com/lox/pickends/internal/session"
)

// ServerCmd serves the HTTP and WebSocket API
type ServerCmd struct {
	ConfigFlags `embed:""`

	Addr     string `kong:"short='a',help='Server address host:port (overrides config)'"`
	LogLevel string `kong:"short='l',enum=',debug,info,warn,error',default='',help='Log level (overrides config)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		if err := applyAddr(cfg, c.Addr); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	seed, rng := randutil.Resolve(c.Seed)
	logger.Info("Using seed", "seed", seed, "deterministic", c.Seed != nil)

	manager := session.NewManager(session.ManagerConfig{
		Generator:   cfg.Game.GeneratorConfig(),
		ThinkDelay:  cfg.Game.ThinkDelay(),
		IdleTimeout: cfg.Game.IdleTimeout(),
		Clock:       quartz.NewReal(),
		Logger:      logger,
		Rand:        rng,
	})
	srv := server.NewServer(manager, logger)

	logger.Info("Starting pickends server",
		"addr", cfg.Address(),
		"boardLength", cfg.Game.BoardLength,
		"generator", cfg.Game.Generator,
		"thinkDelay", cfg.Game.ThinkDelay(),
		"idleTimeout", cfg.Game.IdleTimeout())

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		manager.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return srv.Start(cfg.Address())
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
