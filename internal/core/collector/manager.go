package collector

import (
	"sync"
	"time"

	"github.com/earnly/backend/internal/domain"
)

// Manager owns the collectors for all currently-active attempts, keyed by
// attempt id. Attempts belonging to different users are independent; the
// map is the only shared state.
type Manager struct {
	mu         sync.RWMutex
	collectors map[string]*Collector

	tick        time.Duration
	loadTimeout time.Duration
	throttle    time.Duration
}

type ManagerConfig struct {
	Tick                time.Duration
	LoadTimeout         time.Duration
	InteractionThrottle time.Duration
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		collectors:  make(map[string]*Collector),
		tick:        cfg.Tick,
		loadTimeout: cfg.LoadTimeout,
		throttle:    cfg.InteractionThrottle,
	}
}

// Attach returns the collector for an attempt, creating and starting one
// seeded from the persisted snapshot if none is live. Reattaching after a
// process restart resumes from the stored signals.
func (m *Manager) Attach(attemptID string, strategy Strategy, seed domain.SignalSnapshot) *Collector {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.collectors[attemptID]; ok {
		return c
	}

	c := New(attemptID, strategy, Options{
		Tick:        m.tick,
		LoadTimeout: m.loadTimeout,
		Seed:        seed,
	})
	c.Start()
	m.collectors[attemptID] = c
	return c
}

func (m *Manager) Get(attemptID string) (*Collector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collectors[attemptID]
	return c, ok
}

// NewStrategy builds the acquisition variant for a task's content URL.
func (m *Manager) NewStrategy(contentURL string, trustedOrigins []string) Strategy {
	return SelectStrategy(contentURL, trustedOrigins, m.throttle)
}

// Release stops an attempt's collector and forgets it. Called when the
// attempt reaches a terminal state or the client tears down.
func (m *Manager) Release(attemptID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collectors[attemptID]; ok {
		c.Stop()
		delete(m.collectors, attemptID)
	}
}

// Shutdown stops every live collector.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.collectors {
		c.Stop()
		delete(m.collectors, id)
	}
}
