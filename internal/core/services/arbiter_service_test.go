package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
)

type arbiterFixture struct {
	arbiter  *ArbiterService
	tasks    *fakeTaskRepo
	attempts *fakeAttemptRepo
	timeline *fakeTimelineRepo
	user     *domain.User
	now      time.Time
}

func newArbiterFixture(task domain.TaskDefinition, eligibility *fakeEligibility) *arbiterFixture {
	tasks := newFakeTaskRepo(task)
	attempts := newFakeAttemptRepo()
	timeline := &fakeTimelineRepo{}
	return &arbiterFixture{
		arbiter: NewArbiterService(ArbiterServiceConfig{
			TaskRepo:     tasks,
			AttemptRepo:  attempts,
			Eligibility:  eligibility,
			TimelineRepo: timeline,
			Logger:       testLogger(),
		}),
		tasks:    tasks,
		attempts: attempts,
		timeline: timeline,
		user:     &domain.User{ID: 1},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *arbiterFixture) seedAttempt(id string, startedAgo time.Duration) {
	f.attempts.attempts[id] = domain.EngagementAttempt{
		ID:        id,
		TaskID:    1,
		UserID:    1,
		State:     domain.AttemptStateInProgress,
		StartedAt: f.now.Add(-startedAgo),
	}
}

func passingSnapshot() domain.SignalSnapshot {
	return domain.SignalSnapshot{
		Loaded:           true,
		ElapsedSeconds:   90,
		ScrollPercentage: 100,
	}
}

func arbiterTask() domain.TaskDefinition {
	return domain.TaskDefinition{
		ID:                  1,
		Title:               "Read the launch article",
		Reward:              decimal.RequireFromString("1.50"),
		ContentURL:          "https://content.earnly.app/a/1",
		MinDurationSeconds:  60,
		RequireScrolling:    true,
		MinScrollPercentage: 80,
		IsActive:            true,
	}
}

func TestDecideAcceptsAndCreditsOnce(t *testing.T) {
	f := newArbiterFixture(arbiterTask(), &fakeEligibility{})
	f.seedAttempt("a1", 2*time.Minute)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.False(t, result.PendingReview)
	assert.True(t, result.RewardGranted.Equal(decimal.RequireFromString("1.50")))
	require.Len(t, f.attempts.rewards, 1)

	// The double submit returns the recorded decision without a second
	// ledger row.
	again, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, again.Accepted)
	assert.True(t, again.RewardGranted.Equal(result.RewardGranted))
	assert.Len(t, f.attempts.rewards, 1)

	assert.Contains(t, f.timeline.eventTypes(), domain.EventTypeAttemptAccepted)
	assert.Contains(t, f.timeline.eventTypes(), domain.EventTypeRewardCredited)
}

func TestDecideRejectsInsufficientSignals(t *testing.T) {
	f := newArbiterFixture(arbiterTask(), &fakeEligibility{})
	f.seedAttempt("a1", 2*time.Minute)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: domain.SignalSnapshot{
			Loaded:           true,
			ElapsedSeconds:   45,
			ScrollPercentage: 70,
		}}, f.now)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, domain.ReasonInsufficientTime, result.Reason)
	assert.Empty(t, f.attempts.rewards)

	// The attempt stays resubmittable after a signal rejection.
	stored, err := f.attempts.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStateRejected, stored.State)
	assert.True(t, stored.State.CanTransitionTo(domain.AttemptStateSubmitted))
}

func TestDecideCapsElapsedAtWallClock(t *testing.T) {
	f := newArbiterFixture(arbiterTask(), &fakeEligibility{})
	// Started 30s ago, but the client claims 90s of engagement.
	f.seedAttempt("a1", 30*time.Second)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, domain.ReasonInsufficientTime, result.Reason)
	assert.Equal(t, 30, result.Attempt.ElapsedSeconds)
}

func TestDecideExpiredAttempt(t *testing.T) {
	task := arbiterTask()
	task.TimeLimitMinutes = 30
	f := newArbiterFixture(task, &fakeEligibility{})
	f.seedAttempt("a1", 45*time.Minute)

	_, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now)
	assert.ErrorIs(t, err, ErrAttemptExpired)

	stored, gerr := f.attempts.GetByID(context.Background(), "a1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.AttemptStateRejected, stored.State)
	assert.Equal(t, domain.ReasonExpired, stored.Reason)
	assert.Empty(t, f.attempts.rewards)
}

func TestDecideQuotaRecheckedAtSubmission(t *testing.T) {
	f := newArbiterFixture(arbiterTask(), &fakeEligibility{
		snap: domain.EligibilitySnapshot{DailyQuota: 5, DailyCompletionsUsed: 5},
	})
	f.seedAttempt("a1", 2*time.Minute)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, domain.ReasonQuotaExceeded, result.Reason)
	assert.Empty(t, f.attempts.rewards)
}

func TestDecideManualReviewDefersCredit(t *testing.T) {
	task := arbiterTask()
	task.ManualReview = true
	f := newArbiterFixture(task, &fakeEligibility{})
	f.seedAttempt("a1", 2*time.Minute)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{Snapshot: passingSnapshot()}, f.now)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.True(t, result.PendingReview)
	assert.True(t, result.RewardGranted.IsZero())
	assert.Empty(t, f.attempts.rewards)
}

func TestDecideOwnershipAndExistence(t *testing.T) {
	f := newArbiterFixture(arbiterTask(), &fakeEligibility{})
	f.seedAttempt("a1", time.Minute)

	_, err := f.arbiter.Decide(context.Background(), f.user, "missing",
		ports.SubmitInput{}, f.now)
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	stranger := &domain.User{ID: 99}
	_, err = f.arbiter.Decide(context.Background(), stranger, "a1",
		ports.SubmitInput{}, f.now)
	assert.ErrorIs(t, err, ErrAttemptNotOwned)
}

func TestDecideNoContentTaskWithProof(t *testing.T) {
	task := domain.TaskDefinition{
		ID:       1,
		Title:    "Answer the survey",
		Reward:   decimal.RequireFromString("0.75"),
		IsActive: true,
	}
	f := newArbiterFixture(task, &fakeEligibility{})
	f.seedAttempt("a1", time.Minute)

	result, err := f.arbiter.Decide(context.Background(), f.user, "a1",
		ports.SubmitInput{ProofText: "done, answered all questions"}, f.now)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, "done, answered all questions", result.Attempt.ProofText)
}
