package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

var errNotFound = errors.New("not found")

type fakeTaskRepo struct {
	tasks map[uint]domain.TaskDefinition
}

func newFakeTaskRepo(tasks ...domain.TaskDefinition) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: make(map[uint]domain.TaskDefinition)}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.TaskDefinition) error {
	if task.ID == 0 {
		task.ID = uint(len(r.tasks) + 1)
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uint) (*domain.TaskDefinition, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, errNotFound
	}
	copy := t
	return &copy, nil
}

func (r *fakeTaskRepo) GetActive(ctx context.Context) ([]domain.TaskDefinition, error) {
	var out []domain.TaskDefinition
	for id := uint(1); id <= uint(len(r.tasks)); id++ {
		if t, ok := r.tasks[id]; ok && t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetAll(ctx context.Context) ([]domain.TaskDefinition, error) {
	var out []domain.TaskDefinition
	for id := uint(1); id <= uint(len(r.tasks)); id++ {
		if t, ok := r.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.TaskDefinition) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return errNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Deactivate(ctx context.Context, id uint) error {
	t, ok := r.tasks[id]
	if !ok {
		return errNotFound
	}
	t.IsActive = false
	r.tasks[id] = t
	return nil
}

type fakeAttemptRepo struct {
	attempts map[string]domain.EngagementAttempt
	rewards  []domain.RewardEntry
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[string]domain.EngagementAttempt)}
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *domain.EngagementAttempt) error {
	r.attempts[attempt.ID] = *attempt
	return nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, id string) (*domain.EngagementAttempt, error) {
	a, ok := r.attempts[id]
	if !ok {
		return nil, errNotFound
	}
	copy := a
	return &copy, nil
}

func (r *fakeAttemptRepo) GetByTaskAndUser(ctx context.Context, taskID, userID uint) ([]domain.EngagementAttempt, error) {
	var out []domain.EngagementAttempt
	for _, a := range r.attempts {
		if a.TaskID == taskID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) GetByUser(ctx context.Context, userID uint) ([]domain.EngagementAttempt, error) {
	var out []domain.EngagementAttempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) Update(ctx context.Context, attempt *domain.EngagementAttempt) error {
	if _, ok := r.attempts[attempt.ID]; !ok {
		return errNotFound
	}
	r.attempts[attempt.ID] = *attempt
	return nil
}

func (r *fakeAttemptRepo) CountAcceptedSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var n int64
	for _, a := range r.attempts {
		if a.UserID == userID && a.State == domain.AttemptStateAccepted &&
			a.DecidedAt != nil && a.DecidedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAttemptRepo) Decide(ctx context.Context, attempt *domain.EngagementAttempt, reward *domain.RewardEntry) error {
	r.attempts[attempt.ID] = *attempt
	if reward != nil {
		for _, existing := range r.rewards {
			if existing.AttemptID == reward.AttemptID {
				return nil
			}
		}
		r.rewards = append(r.rewards, *reward)
	}
	return nil
}

type fakeTimelineRepo struct {
	events []domain.TimelineEvent
}

func (r *fakeTimelineRepo) Create(ctx context.Context, event *domain.TimelineEvent) error {
	event.ID = uint(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeTimelineRepo) GetByID(ctx context.Context, id uint) (*domain.TimelineEvent, error) {
	for _, e := range r.events {
		if e.ID == id {
			copy := e
			return &copy, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeTimelineRepo) GetByResource(ctx context.Context, resourceType string, resourceID uint) ([]domain.TimelineEvent, error) {
	var out []domain.TimelineEvent
	for _, e := range r.events {
		if e.ResourceType == resourceType && e.ResourceID != nil && *e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeTimelineRepo) GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error) {
	if limit > 0 && len(r.events) > limit {
		return r.events[len(r.events)-limit:], nil
	}
	return r.events, nil
}

func (r *fakeTimelineRepo) eventTypes() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeEligibility returns a fixed snapshot, for exercising the arbiter and
// lifecycle services in isolation.
type fakeEligibility struct {
	snap domain.EligibilitySnapshot
	err  error
}

func (f *fakeEligibility) Snapshot(ctx context.Context, user *domain.User) (domain.EligibilitySnapshot, error) {
	return f.snap, f.err
}

func (f *fakeEligibility) CheckStart(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	if user.AccessDisabled {
		return ErrAccessDisabled
	}
	if f.snap.RegionBlocked {
		return ErrRegionBlocked
	}
	if f.snap.ReferralRequired {
		return ErrReferralRequired
	}
	if f.snap.QuotaReached() {
		return ErrQuotaExceeded
	}
	return nil
}

var _ ports.TaskRepository = (*fakeTaskRepo)(nil)
var _ ports.AttemptRepository = (*fakeAttemptRepo)(nil)
var _ ports.TimelineRepository = (*fakeTimelineRepo)(nil)
var _ ports.EligibilityService = (*fakeEligibility)(nil)
