package collector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/earnly/backend/internal/domain"
)

func newTestCollector(opts Options) *Collector {
	return New("attempt-1", FrameStrategy{}, opts)
}

func TestApplyScrollIsMonotonic(t *testing.T) {
	c := newTestCollector(Options{})

	c.Apply(domain.ContentEvent{Kind: domain.ContentEventScroll, ScrollPercentage: 40})
	c.Apply(domain.ContentEvent{Kind: domain.ContentEventScroll, ScrollPercentage: 75})
	// Out-of-order and duplicate reports must not lower the high-water mark.
	c.Apply(domain.ContentEvent{Kind: domain.ContentEventScroll, ScrollPercentage: 10})
	snap := c.Apply(domain.ContentEvent{Kind: domain.ContentEventScroll, ScrollPercentage: 75})

	assert.Equal(t, 75, snap.ScrollPercentage)
}

func TestApplyEventWeights(t *testing.T) {
	c := newTestCollector(Options{})

	c.Apply(domain.ContentEvent{Kind: domain.ContentEventInteraction})
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.InteractionCount)

	// A click carries double interaction weight.
	c.Apply(domain.ContentEvent{Kind: domain.ContentEventClick})
	snap = c.Snapshot()
	assert.Equal(t, 3, snap.InteractionCount)
	assert.Equal(t, 0, snap.AdClickCount)

	// An ad click counts once as an ad click and twice as interaction.
	snap = c.Apply(domain.ContentEvent{
		Kind:      domain.ContentEventClick,
		Ancestors: []domain.ElementInfo{{ID: "ad-slot-3"}},
	})
	assert.Equal(t, 1, snap.AdClickCount)
	assert.Equal(t, 5, snap.InteractionCount)
}

func TestApplyIsSafeForConcurrentReports(t *testing.T) {
	// Reports for one attempt can arrive in parallel. The host strategy
	// keeps throttle state, so classification has to run under the
	// collector lock; this only bites under the race detector if it does
	// not, and the count drifts if merges are lost.
	c := New("attempt-1", &HostStrategy{}, Options{})

	const workers = 8
	const perWorker = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.Apply(domain.ContentEvent{Kind: domain.ContentEventInteraction})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, c.Snapshot().InteractionCount)
}

func TestElapsedAccruesOnlyWhileLoaded(t *testing.T) {
	c := newTestCollector(Options{Tick: 10 * time.Millisecond})
	c.Start()
	defer c.Stop()

	// Content never loaded: no time accrues.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, c.Snapshot().ElapsedSeconds)

	c.Apply(domain.ContentEvent{Kind: domain.ContentEventLoaded})
	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, c.Snapshot().ElapsedSeconds, 0)
}

func TestLateLoadAfterTimeoutIsIgnored(t *testing.T) {
	c := newTestCollector(Options{
		Tick:        5 * time.Millisecond,
		LoadTimeout: 10 * time.Millisecond,
	})
	c.Start()
	defer c.Stop()

	// Let the load window lapse, then report loaded.
	time.Sleep(40 * time.Millisecond)
	snap := c.Apply(domain.ContentEvent{Kind: domain.ContentEventLoaded})

	assert.False(t, snap.Loaded)
	assert.Equal(t, 0, snap.ElapsedSeconds)
}

func TestSeedRestoresSnapshot(t *testing.T) {
	seed := domain.SignalSnapshot{
		ElapsedSeconds:   30,
		ScrollPercentage: 50,
		InteractionCount: 4,
		Loaded:           true,
	}
	c := newTestCollector(Options{Seed: seed})

	snap := c.Snapshot()
	assert.Equal(t, 30, snap.ElapsedSeconds)
	assert.Equal(t, 50, snap.ScrollPercentage)
	assert.Equal(t, 4, snap.InteractionCount)
	assert.True(t, snap.Loaded)

	// Accumulation continues on top of the seed.
	snap = c.Apply(domain.ContentEvent{Kind: domain.ContentEventScroll, ScrollPercentage: 60})
	assert.Equal(t, 60, snap.ScrollPercentage)
}

func TestManagerAttachIsIdempotent(t *testing.T) {
	m := NewManager(ManagerConfig{Tick: time.Hour})
	defer m.Shutdown()

	a := m.Attach("a1", FrameStrategy{}, domain.SignalSnapshot{})
	b := m.Attach("a1", FrameStrategy{}, domain.SignalSnapshot{ScrollPercentage: 99})

	// The second attach returns the live collector, ignoring the new seed.
	assert.Same(t, a, b)
	assert.Equal(t, 0, b.Snapshot().ScrollPercentage)

	m.Release("a1")
	_, ok := m.Get("a1")
	assert.False(t, ok)
}

func TestCrossOriginFlagFollowsStrategy(t *testing.T) {
	m := NewManager(ManagerConfig{Tick: time.Hour})
	defer m.Shutdown()

	trusted := []string{"content.earnly.app"}

	same := m.NewStrategy("https://content.earnly.app/articles/42", trusted)
	cross := m.NewStrategy("https://example.com/page", trusted)

	assert.False(t, same.CrossOrigin())
	assert.True(t, cross.CrossOrigin())

	c := m.Attach("a2", cross, domain.SignalSnapshot{})
	assert.True(t, c.Snapshot().CrossOrigin)
}
