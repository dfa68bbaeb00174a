package session

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/gameid"
	"github.com/lox/pickends/internal/randutil"
)

// ManagerConfig holds the defaults applied to every session.
type ManagerConfig struct {
	Generator   game.GeneratorConfig
	ThinkDelay  time.Duration
	IdleTimeout time.Duration
	Clock       quartz.Clock
	Logger      *log.Logger
	Rand        *rand.Rand
}

// Manager keeps one Controller per session. Sessions share no state; the
// manager only guards the index and the board generator.
type Manager struct {
	cfg    ManagerConfig
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Controller

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewManager creates an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	rng := cfg.Rand
	if rng == nil {
		_, rng = randutil.Resolve(nil)
	}
	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.WithPrefix("sessions"),
		sessions: make(map[string]*Controller),
		rng:      rng,
	}
}

// StartOptions describes a new game. A nil Board is generated with Length
// values, or the configured default length when Length is zero.
type StartOptions struct {
	HumanSeat game.Seat
	Length    int
	Board     game.Board
}

// Start creates and registers a new session.
func (m *Manager) Start(opts StartOptions) (*Controller, error) {
	board := opts.Board
	if board == nil {
		genCfg := m.cfg.Generator
		if opts.Length != 0 {
			genCfg.Length = opts.Length
		}
		var err error
		m.rngMu.Lock()
		board, err = game.Generate(m.rng, genCfg)
		m.rngMu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	c, err := New(gameid.Generate(), opts.HumanSeat, board, Config{
		ThinkDelay: m.cfg.ThinkDelay,
		Clock:      m.cfg.Clock,
		Logger:     m.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[c.ID()] = c
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("Session registered", "game", c.ID(), "total", total)
	return c, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// Remove ends the session with id.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Debug("Session removed", "game", id, "total", len(m.sessions))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns the live session IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reap removes sessions idle for longer than the idle timeout. Sessions with
// a move in flight are kept. It returns the number removed.
func (m *Manager) Reap() int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	now := m.cfg.Clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.sessions {
		if c.Busy() {
			continue
		}
		if now.Sub(c.LastActive()) > m.cfg.IdleTimeout {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Reaped idle sessions", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Run reaps idle sessions periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	interval := m.cfg.IdleTimeout / 2
	ticker := m.cfg.Clock.NewTicker(interval, "sessions", "reap")
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Reap()
		case <-ctx.Done():
			return
		}
	}
}
