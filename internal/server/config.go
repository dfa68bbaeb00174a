package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pickends/internal/game"
)

const maxBoardLength = 1000

// Config represents the complete pickends configuration
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings controls board generation and session timing
type GameSettings struct {
	BoardLength  int    `hcl:"board_length,optional"`
	MaxValue     int    `hcl:"max_value,optional"`
	Generator    string `hcl:"generator,optional"`
	ThinkDelayMS *int   `hcl:"think_delay_ms,optional"`
	IdleTimeoutS *int   `hcl:"idle_timeout_s,optional"`
}

// fileConfig mirrors the HCL layout; both blocks may be omitted.
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &Config{}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Game.BoardLength == 0 {
		c.Game.BoardLength = 14
	}
	if c.Game.MaxValue == 0 {
		c.Game.MaxValue = 99
	}
	if c.Game.Generator == "" {
		c.Game.Generator = game.GeneratorRandom
	}
	if c.Game.ThinkDelayMS == nil {
		delay := 1000
		c.Game.ThinkDelayMS = &delay
	}
	if c.Game.IdleTimeoutS == nil {
		idle := 900
		c.Game.IdleTimeoutS = &idle
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", game.ErrInvalidConfiguration, c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level: %s", game.ErrInvalidConfiguration, c.Server.LogLevel)
	}

	g := c.Game
	if g.BoardLength < 2 || g.BoardLength%2 != 0 || g.BoardLength > maxBoardLength {
		return fmt.Errorf("%w: board length must be an even number between 2 and %d, got %d",
			game.ErrInvalidConfiguration, maxBoardLength, g.BoardLength)
	}
	switch g.Generator {
	case game.GeneratorRandom:
		if g.MaxValue < 2 {
			return fmt.Errorf("%w: max value must be at least 2, got %d", game.ErrInvalidConfiguration, g.MaxValue)
		}
	case game.GeneratorPermutation:
	default:
		return fmt.Errorf("%w: unknown generator %q", game.ErrInvalidConfiguration, g.Generator)
	}
	if g.ThinkDelayMS != nil && *g.ThinkDelayMS < 0 {
		return fmt.Errorf("%w: think delay cannot be negative", game.ErrInvalidConfiguration)
	}
	if g.IdleTimeoutS != nil && *g.IdleTimeoutS < 0 {
		return fmt.Errorf("%w: idle timeout cannot be negative", game.ErrInvalidConfiguration)
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GeneratorConfig returns the board generator settings.
func (g GameSettings) GeneratorConfig() game.GeneratorConfig {
	return game.GeneratorConfig{
		Length:   g.BoardLength,
		MaxValue: g.MaxValue,
		Kind:     g.Generator,
	}
}

// ThinkDelay returns how long the computer pauses before each move.
func (g GameSettings) ThinkDelay() time.Duration {
	if g.ThinkDelayMS == nil {
		return 0
	}
	return time.Duration(*g.ThinkDelayMS) * time.Millisecond
}

// IdleTimeout returns how long a session may sit untouched. Zero disables reaping.
func (g GameSettings) IdleTimeout() time.Duration {
	if g.IdleTimeoutS == nil {
		return 0
	}
	return time.Duration(*g.IdleTimeoutS) * time.Second
}

// SetThinkDelay overrides the think delay.
func (g *GameSettings) SetThinkDelay(d time.Duration) {
	ms := int(d / time.Millisecond)
	g.ThinkDelayMS = &ms
}
