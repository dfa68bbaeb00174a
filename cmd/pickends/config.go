package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/lox/pickends/internal/server"
)

// ConfigFlags are shared by the commands that read pickends.hcl
type ConfigFlags struct {
	Config     string         `kong:"short='c',default='pickends.hcl',help='Path to HCL configuration file'"`
	ThinkDelay *time.Duration `kong:"help='Computer think delay (overrides config)'"`
	Length     int            `kong:"help='Board length for generated boards (overrides config)'"`
	Seed       *int64         `kong:"help='Deterministic RNG seed for board generation (optional)'"`
}

func (f ConfigFlags) load() (*server.Config, error) {
	cfg, err := server.LoadConfig(f.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f.ThinkDelay != nil {
		cfg.Game.SetThinkDelay(*f.ThinkDelay)
	}
	if f.Length != 0 {
		cfg.Game.BoardLength = f.Length
	}
	return cfg, nil
}

// applyAddr overrides the listen address with a host:port string.
func applyAddr(cfg *server.Config, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	cfg.Server.Address = host
	cfg.Server.Port = port
	return nil
}
