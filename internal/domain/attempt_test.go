package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AttemptState
		to      AttemptState
		allowed bool
	}{
		{"started to in_progress", AttemptStateStarted, AttemptStateInProgress, true},
		{"started to submitted", AttemptStateStarted, AttemptStateSubmitted, true},
		{"in_progress to submitted", AttemptStateInProgress, AttemptStateSubmitted, true},
		{"submitted to accepted", AttemptStateSubmitted, AttemptStateAccepted, true},
		{"submitted to rejected", AttemptStateSubmitted, AttemptStateRejected, true},
		{"rejected resubmits", AttemptStateRejected, AttemptStateSubmitted, true},
		{"no backward to started", AttemptStateInProgress, AttemptStateStarted, false},
		{"accepted is final", AttemptStateAccepted, AttemptStateSubmitted, false},
		{"accepted never rejected", AttemptStateAccepted, AttemptStateRejected, false},
		{"rejected never accepted directly", AttemptStateRejected, AttemptStateAccepted, false},
		{"started never accepted directly", AttemptStateStarted, AttemptStateAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAttemptStateTerminal(t *testing.T) {
	assert.True(t, AttemptStateAccepted.Terminal())
	assert.False(t, AttemptStateStarted.Terminal())
	assert.False(t, AttemptStateInProgress.Terminal())
	assert.False(t, AttemptStateSubmitted.Terminal())
	assert.False(t, AttemptStateRejected.Terminal())
}

func TestApplySnapshotIsMonotonic(t *testing.T) {
	attempt := &EngagementAttempt{
		ElapsedSeconds:   60,
		ScrollPercentage: 80,
		InteractionCount: 5,
		AdClickCount:     1,
		ContentLoaded:    true,
	}

	// A stale report with lower values must not regress anything.
	attempt.ApplySnapshot(SignalSnapshot{
		ElapsedSeconds:   10,
		ScrollPercentage: 20,
		InteractionCount: 2,
		AdClickCount:     0,
		Loaded:           false,
	})

	assert.Equal(t, 60, attempt.ElapsedSeconds)
	assert.Equal(t, 80, attempt.ScrollPercentage)
	assert.Equal(t, 5, attempt.InteractionCount)
	assert.Equal(t, 1, attempt.AdClickCount)
	assert.True(t, attempt.ContentLoaded)

	// Higher values do move it forward.
	attempt.ApplySnapshot(SignalSnapshot{
		ElapsedSeconds:   90,
		ScrollPercentage: 100,
		InteractionCount: 7,
		AdClickCount:     2,
	})

	assert.Equal(t, 90, attempt.ElapsedSeconds)
	assert.Equal(t, 100, attempt.ScrollPercentage)
	assert.Equal(t, 7, attempt.InteractionCount)
	assert.Equal(t, 2, attempt.AdClickCount)
}

func TestAttemptExpired(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	attempt := &EngagementAttempt{StartedAt: started}

	limited := &TaskDefinition{TimeLimitMinutes: 30}
	unlimited := &TaskDefinition{TimeLimitMinutes: 0}

	assert.False(t, attempt.Expired(limited, started.Add(29*time.Minute)))
	assert.False(t, attempt.Expired(limited, started.Add(30*time.Minute)))
	assert.True(t, attempt.Expired(limited, started.Add(31*time.Minute)))
	assert.False(t, attempt.Expired(unlimited, started.Add(24*time.Hour)))
}
