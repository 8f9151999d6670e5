package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/earnly/backend/internal/config"
	"github.com/earnly/backend/internal/core/collector"
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
)

// TaskService owns the task lifecycle: which tasks a user sees, starting
// an attempt, folding reported signals in, and handing submissions to the
// arbiter. All transition legality goes through the domain table.
type TaskService struct {
	taskRepo     ports.TaskRepository
	attemptRepo  ports.AttemptRepository
	timelineRepo ports.TimelineRepository
	eligibility  ports.EligibilityService
	arbiter      ports.ArbiterService
	collectors   *collector.Manager
	hub          ports.EventPublisher
	logger       *logger.Logger
	cfg          config.EngagementConfig

	now func() time.Time
}

type TaskServiceConfig struct {
	TaskRepo     ports.TaskRepository
	AttemptRepo  ports.AttemptRepository
	TimelineRepo ports.TimelineRepository
	Eligibility  ports.EligibilityService
	Arbiter      ports.ArbiterService
	Collectors   *collector.Manager
	Hub          ports.EventPublisher
	Logger       *logger.Logger
	Config       config.EngagementConfig
}

func NewTaskService(cfg TaskServiceConfig) *TaskService {
	return &TaskService{
		taskRepo:     cfg.TaskRepo,
		attemptRepo:  cfg.AttemptRepo,
		timelineRepo: cfg.TimelineRepo,
		eligibility:  cfg.Eligibility,
		arbiter:      cfg.Arbiter,
		collectors:   cfg.Collectors,
		hub:          cfg.Hub,
		logger:       cfg.Logger,
		cfg:          cfg.Config,
		now:          time.Now,
	}
}

// resumable reports whether an attempt can still accumulate signals and be
// resubmitted. An expired rejection is dead; only a fresh attempt helps.
func resumable(a *domain.EngagementAttempt) bool {
	switch a.State {
	case domain.AttemptStateStarted, domain.AttemptStateInProgress:
		return true
	case domain.AttemptStateRejected:
		return a.Reason != domain.ReasonExpired
	}
	return false
}

func (s *TaskService) ListTasks(ctx context.Context, user *domain.User) ([]ports.TaskOverview, domain.EligibilitySnapshot, error) {
	snap, err := s.eligibility.Snapshot(ctx, user)
	if err != nil {
		return nil, snap, err
	}

	// A blocked region sees no tasks at all; the handler surfaces the
	// region so the caller can route the user accordingly.
	if snap.RegionBlocked {
		s.logger.Infow("tasks_list_region_blocked", "user_id", user.ID, "region", snap.RegionCode)
		return nil, snap, ErrRegionBlocked
	}

	tasks, err := s.taskRepo.GetActive(ctx)
	if err != nil {
		return nil, snap, err
	}

	attempts, err := s.attemptRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, snap, err
	}
	byTask := make(map[uint][]domain.EngagementAttempt)
	for _, a := range attempts {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}

	startable := !user.AccessDisabled && !snap.ReferralRequired && !snap.QuotaReached()

	overviews := make([]ports.TaskOverview, 0, len(tasks))
	for i := range tasks {
		task := tasks[i]
		own := byTask[task.ID]

		var active *domain.EngagementAttempt
		completed := false
		for j := range own {
			if own[j].State == domain.AttemptStateAccepted {
				completed = true
			}
			if resumable(&own[j]) {
				active = &own[j]
			}
		}

		used := len(own)
		exhausted := !completed && active == nil &&
			task.MaxAttempts > 0 && used >= task.MaxAttempts

		overview := ports.TaskOverview{
			Task:       task,
			Attempt:    active,
			InProgress: active != nil,
			Completed:  completed,
			Exhausted:  exhausted,
			CanStart:   startable && !completed && active == nil && !exhausted,
		}

		if active != nil {
			live := active.Snapshot()
			if col, ok := s.collectors.Get(active.ID); ok {
				live = col.Snapshot()
			}
			overview.Progress = EngagementScore(&task, live)
		} else if completed {
			overview.Progress = 1
		}

		overviews = append(overviews, overview)
	}

	return overviews, snap, nil
}

func (s *TaskService) StartTask(ctx context.Context, user *domain.User, taskID uint) (*domain.EngagementAttempt, error) {
	if err := s.eligibility.CheckStart(ctx, user); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	if !task.IsActive {
		return nil, ErrTaskInactive
	}

	attempts, err := s.attemptRepo.GetByTaskAndUser(ctx, taskID, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range attempts {
		if attempts[i].State == domain.AttemptStateAccepted {
			return nil, ErrTaskCompleted
		}
	}

	// Starting an already-started task resumes the live attempt instead of
	// burning a new one.
	for i := range attempts {
		if resumable(&attempts[i]) {
			attempt := attempts[i]
			if task.HasContent() {
				strategy := s.collectors.NewStrategy(task.ContentURL, s.cfg.TrustedOrigins)
				s.collectors.Attach(attempt.ID, strategy, attempt.Snapshot())
			}
			s.logger.Infow("attempt_resume", "attempt_id", attempt.ID, "user_id", user.ID, "task_id", taskID)
			return &attempt, nil
		}
	}

	if task.MaxAttempts > 0 && len(attempts) >= task.MaxAttempts {
		return nil, ErrAttemptsExhausted
	}

	// The attempt row is created the moment the start request is accepted,
	// so elapsed time is anchored to a server-side timestamp. A task with
	// no content has no surface to observe; it gets no collector and no
	// ticker, and is evaluated purely on explicit completion.
	var strategy collector.Strategy
	crossOrigin := false
	if task.HasContent() {
		strategy = s.collectors.NewStrategy(task.ContentURL, s.cfg.TrustedOrigins)
		crossOrigin = strategy.CrossOrigin()
	}
	attempt := &domain.EngagementAttempt{
		ID:            uuid.New().String(),
		TaskID:        task.ID,
		UserID:        user.ID,
		State:         domain.AttemptStateStarted,
		AttemptNumber: len(attempts) + 1,
		StartedAt:     s.now(),
		CrossOrigin:   crossOrigin,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		s.logger.Errorw("attempt_create_failed", "user_id", user.ID, "task_id", taskID, "error", err)
		return nil, err
	}

	if strategy != nil {
		s.collectors.Attach(attempt.ID, strategy, attempt.Snapshot())
	}

	s.recordTimeline(ctx, domain.EventTypeAttemptStarted, domain.EventStatusSuccess, attempt)
	s.hub.Publish(user.ID, domain.LiveEvent{
		Type:      domain.LiveEventTaskUpdated,
		TaskID:    task.ID,
		AttemptID: attempt.ID,
		Timestamp: s.now(),
	})

	s.logger.Infow("attempt_started",
		"attempt_id", attempt.ID,
		"user_id", user.ID,
		"task_id", taskID,
		"attempt_number", attempt.AttemptNumber,
		"cross_origin", attempt.CrossOrigin,
	)
	return attempt, nil
}

func (s *TaskService) ReportSignal(ctx context.Context, user *domain.User, attemptID string, event domain.ContentEvent) (*ports.SignalReport, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.UserID != user.ID {
		return nil, ErrAttemptNotOwned
	}
	if attempt.State.Terminal() {
		return nil, ErrAttemptTerminal
	}
	if !resumable(attempt) && attempt.State != domain.AttemptStateSubmitted {
		return nil, ErrAttemptExpired
	}

	task, err := s.taskRepo.GetByID(ctx, attempt.TaskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	var snap domain.SignalSnapshot
	if task.HasContent() {
		strategy := s.collectors.NewStrategy(task.ContentURL, s.cfg.TrustedOrigins)
		col := s.collectors.Attach(attempt.ID, strategy, attempt.Snapshot())
		snap = col.Apply(event)
		attempt.ApplySnapshot(snap)
	} else {
		// Nothing to observe, but a report still moves a started attempt
		// into progress.
		snap = attempt.Snapshot()
	}
	if attempt.State == domain.AttemptStateStarted &&
		attempt.State.CanTransitionTo(domain.AttemptStateInProgress) {
		attempt.State = domain.AttemptStateInProgress
	}
	if err := s.attemptRepo.Update(ctx, attempt); err != nil {
		s.logger.Errorw("attempt_signal_persist_failed", "attempt_id", attemptID, "error", err)
		return nil, err
	}

	return &ports.SignalReport{
		Snapshot:    snap,
		MayComplete: MayComplete(task, snap),
		Score:       EngagementScore(task, snap),
	}, nil
}

func (s *TaskService) SubmitAttempt(ctx context.Context, user *domain.User, attemptID string, input ports.SubmitInput) (*ports.SubmissionResult, error) {
	// Fold the server-side collector state into the submitted snapshot so
	// the arbiter sees at least everything this process observed itself.
	if col, ok := s.collectors.Get(attemptID); ok {
		live := col.Snapshot()
		if live.ElapsedSeconds > input.Snapshot.ElapsedSeconds {
			input.Snapshot.ElapsedSeconds = live.ElapsedSeconds
		}
		if live.ScrollPercentage > input.Snapshot.ScrollPercentage {
			input.Snapshot.ScrollPercentage = live.ScrollPercentage
		}
		if live.InteractionCount > input.Snapshot.InteractionCount {
			input.Snapshot.InteractionCount = live.InteractionCount
		}
		if live.AdClickCount > input.Snapshot.AdClickCount {
			input.Snapshot.AdClickCount = live.AdClickCount
		}
		input.Snapshot.Loaded = input.Snapshot.Loaded || live.Loaded
		input.Snapshot.CrossOrigin = input.Snapshot.CrossOrigin || live.CrossOrigin
	}

	now := s.now()
	result, err := s.arbiter.Decide(ctx, user, attemptID, input, now)

	// Release the collector once the attempt can no longer accumulate:
	// acceptance and expiry are both final for this attempt.
	if (result != nil && result.Accepted) || err == ErrAttemptExpired {
		s.collectors.Release(attemptID)
	}

	if result != nil || err == ErrAttemptExpired {
		s.hub.Publish(user.ID, domain.LiveEvent{
			Type:      domain.LiveEventTaskUpdated,
			AttemptID: attemptID,
			Timestamp: now,
		})
	}

	return result, err
}

func (s *TaskService) recordTimeline(ctx context.Context, eventType string, status domain.EventStatus, attempt *domain.EngagementAttempt) {
	taskID := attempt.TaskID
	event := &domain.TimelineEvent{
		Type:   eventType,
		Status: status,
		Meta: domain.JSONB{
			"attempt_id": attempt.ID,
			"user_id":    attempt.UserID,
		},
		ResourceID:   &taskID,
		ResourceType: "task",
	}
	if err := s.timelineRepo.Create(ctx, event); err != nil {
		s.logger.Warnw("task_timeline_write_failed", "attempt_id", attempt.ID, "error", err)
	}
}
