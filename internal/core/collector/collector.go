package collector

import (
	"sync"
	"time"

	"github.com/earnly/backend/internal/domain"
)

// Collector accumulates engagement signals for one active attempt. The
// elapsed timer is an owned resource: it starts ticking with Start, runs
// only while the content is loaded, and is released by Stop.
//
// Accumulation is monotonic and commutative: scroll uses max(), counters
// only increment, so events may arrive in any order without corrupting
// the snapshot.
type Collector struct {
	attemptID string
	strategy  Strategy

	mu         sync.Mutex
	snap       domain.SignalSnapshot
	loadFailed bool
	startedAt  time.Time

	tick        time.Duration
	loadTimeout time.Duration
	done        chan struct{}
	stopOnce    sync.Once
}

type Options struct {
	// Tick is the elapsed-time resolution. Defaults to one second.
	Tick time.Duration
	// LoadTimeout bounds how long the content may take to load. Once it
	// passes without a loaded event the collector reports loaded=false
	// indefinitely and no time accrues.
	LoadTimeout time.Duration
	// Seed restores a snapshot persisted by an earlier process.
	Seed domain.SignalSnapshot
}

func New(attemptID string, strategy Strategy, opts Options) *Collector {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	snap := opts.Seed
	snap.CrossOrigin = strategy.CrossOrigin()
	return &Collector{
		attemptID:   attemptID,
		strategy:    strategy,
		snap:        snap,
		tick:        opts.Tick,
		loadTimeout: opts.LoadTimeout,
		done:        make(chan struct{}),
	}
}

func (c *Collector) AttemptID() string { return c.attemptID }

// Start launches the elapsed ticker. Each tick advances ElapsedSeconds by
// one, but only while the content is loaded; an attempt whose content
// never loads accrues no time.
func (c *Collector) Start() {
	c.mu.Lock()
	c.startedAt = time.Now()
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.snap.Loaded {
					c.snap.ElapsedSeconds++
				} else if c.loadTimeout > 0 && !c.loadFailed &&
					time.Since(c.startedAt) > c.loadTimeout {
					c.loadFailed = true
				}
				c.mu.Unlock()
			}
		}
	}()
}

// Stop releases the ticker. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Apply classifies one raw event through the attempt's strategy and folds
// it into the snapshot. Returns the snapshot after the merge.
//
// Classify runs under the collector mutex: the host strategy keeps throttle
// state, and concurrent reports for one attempt must not race on it.
func (c *Collector) Apply(event domain.ContentEvent) domain.SignalSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	classified, ok := c.strategy.Classify(event)
	if !ok {
		return c.snap
	}

	switch classified.Kind {
	case domain.ContentEventLoaded:
		// A load reported after the bounded window is too late: the
		// collector keeps reporting loaded=false.
		if !c.loadFailed {
			c.snap.Loaded = true
		}
	case domain.ContentEventScroll:
		if classified.ScrollPercentage > c.snap.ScrollPercentage {
			c.snap.ScrollPercentage = classified.ScrollPercentage
		}
	case domain.ContentEventInteraction:
		c.snap.InteractionCount++
	case domain.ContentEventClick:
		c.snap.InteractionCount += 2
	case domain.ContentEventAdClick:
		c.snap.AdClickCount++
		c.snap.InteractionCount += 2
	}

	return c.snap
}

func (c *Collector) Snapshot() domain.SignalSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *Collector) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Loaded
}
