package services

import (
	"context"
	"time"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// ArbiterService is the only authority over accept/reject and the only
// path that credits rewards. It re-derives the completion gate from the
// submitted snapshot; the client's own verdict is never read.
type ArbiterService struct {
	taskRepo     ports.TaskRepository
	attemptRepo  ports.AttemptRepository
	eligibility  ports.EligibilityService
	timelineRepo ports.TimelineRepository
	logger       *logger.Logger
}

type ArbiterServiceConfig struct {
	TaskRepo     ports.TaskRepository
	AttemptRepo  ports.AttemptRepository
	Eligibility  ports.EligibilityService
	TimelineRepo ports.TimelineRepository
	Logger       *logger.Logger
}

func NewArbiterService(cfg ArbiterServiceConfig) *ArbiterService {
	return &ArbiterService{
		taskRepo:     cfg.TaskRepo,
		attemptRepo:  cfg.AttemptRepo,
		eligibility:  cfg.Eligibility,
		timelineRepo: cfg.TimelineRepo,
		logger:       cfg.Logger,
	}
}

func (s *ArbiterService) Decide(ctx context.Context, user *domain.User, attemptID string, input ports.SubmitInput, now time.Time) (*ports.SubmissionResult, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.UserID != user.ID {
		s.logger.Warnw("arbiter_attempt_not_owned", "attempt_id", attemptID, "user_id", user.ID)
		return nil, ErrAttemptNotOwned
	}

	// Duplicate submission for an already-accepted attempt is a no-op:
	// the recorded decision is returned and nothing is credited again.
	if attempt.State == domain.AttemptStateAccepted {
		s.logger.Infow("arbiter_duplicate_submission", "attempt_id", attemptID)
		return &ports.SubmissionResult{
			Accepted:      true,
			PendingReview: attempt.PendingReview,
			RewardGranted: attempt.RewardGranted,
			Score:         attempt.EngagementScore,
			Attempt:       attempt,
		}, nil
	}

	if !attempt.State.CanTransitionTo(domain.AttemptStateSubmitted) {
		return nil, ErrAttemptNotActive
	}

	task, err := s.taskRepo.GetByID(ctx, attempt.TaskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	// Fold the submitted snapshot in. Monotonic merge: the client can only
	// raise signals, never lower or reset them.
	attempt.ApplySnapshot(input.Snapshot)
	if input.ProofText != "" {
		attempt.ProofText = input.ProofText
	}

	// The client's elapsed claim cannot exceed the server-observed wall
	// time since the attempt row was created.
	if wall := int(now.Sub(attempt.StartedAt).Seconds()); attempt.ElapsedSeconds > wall {
		attempt.ElapsedSeconds = wall
	}

	attempt.State = domain.AttemptStateSubmitted
	attempt.SubmittedAt = &now
	attempt.EngagementScore = EngagementScore(task, attempt.Snapshot())

	// Stale attempts cannot be paid out no matter what the signals say.
	if attempt.Expired(task, now) {
		if err := s.reject(ctx, attempt, domain.ReasonExpired, now); err != nil {
			return nil, err
		}
		return nil, ErrAttemptExpired
	}

	// The quota may have been used up between start and submit.
	snap, err := s.eligibility.Snapshot(ctx, user)
	if err != nil {
		return nil, err
	}
	if snap.QuotaReached() {
		if err := s.reject(ctx, attempt, domain.ReasonQuotaExceeded, now); err != nil {
			return nil, err
		}
		return &ports.SubmissionResult{
			Accepted: false,
			Reason:   domain.ReasonQuotaExceeded,
			Score:    attempt.EngagementScore,
			Attempt:  attempt,
		}, nil
	}

	if !MayComplete(task, attempt.Snapshot()) {
		reason := FailureReason(task, attempt.Snapshot())
		if err := s.reject(ctx, attempt, reason, now); err != nil {
			return nil, err
		}
		s.logger.Infow("arbiter_rejected",
			"attempt_id", attempt.ID,
			"task_id", task.ID,
			"reason", reason,
			"score", attempt.EngagementScore,
		)
		return &ports.SubmissionResult{
			Accepted: false,
			Reason:   reason,
			Score:    attempt.EngagementScore,
			Attempt:  attempt,
		}, nil
	}

	return s.accept(ctx, attempt, task, now)
}

func (s *ArbiterService) reject(ctx context.Context, attempt *domain.EngagementAttempt, reason domain.RejectionReason, now time.Time) error {
	attempt.State = domain.AttemptStateRejected
	attempt.Reason = reason
	attempt.DecidedAt = &now

	if err := s.attemptRepo.Decide(ctx, attempt, nil); err != nil {
		s.logger.Errorw("arbiter_reject_persist_failed", "attempt_id", attempt.ID, "error", err)
		return err
	}
	s.recordTimeline(ctx, domain.EventTypeAttemptRejected, domain.EventStatusFailed, attempt, domain.JSONB{
		"reason": string(reason),
		"score":  attempt.EngagementScore,
	})
	return nil
}

func (s *ArbiterService) accept(ctx context.Context, attempt *domain.EngagementAttempt, task *domain.TaskDefinition, now time.Time) (*ports.SubmissionResult, error) {
	attempt.State = domain.AttemptStateAccepted
	attempt.Reason = ""
	attempt.DecidedAt = &now
	attempt.PendingReview = task.ManualReview

	var reward *domain.RewardEntry
	if task.ManualReview {
		// Accepted but parked for moderation; nothing is credited until a
		// moderator releases it.
		attempt.RewardGranted = decimal.Zero
	} else {
		attempt.RewardGranted = task.Reward
		reward = &domain.RewardEntry{
			UserID:    attempt.UserID,
			AttemptID: attempt.ID,
			TaskID:    task.ID,
			Amount:    task.Reward,
		}
	}

	// Acceptance and crediting are one atomic operation keyed by attempt
	// id; the repository guarantees at-most-once crediting.
	if err := s.attemptRepo.Decide(ctx, attempt, reward); err != nil {
		s.logger.Errorw("arbiter_accept_persist_failed", "attempt_id", attempt.ID, "error", err)
		return nil, err
	}

	s.logger.Infow("arbiter_accepted",
		"attempt_id", attempt.ID,
		"task_id", task.ID,
		"user_id", attempt.UserID,
		"reward", attempt.RewardGranted,
		"pending_review", attempt.PendingReview,
		"score", attempt.EngagementScore,
	)

	s.recordTimeline(ctx, domain.EventTypeAttemptAccepted, domain.EventStatusSuccess, attempt, domain.JSONB{
		"score":          attempt.EngagementScore,
		"pending_review": attempt.PendingReview,
	})
	if reward != nil {
		s.recordTimeline(ctx, domain.EventTypeRewardCredited, domain.EventStatusSuccess, attempt, domain.JSONB{
			"amount": reward.Amount.String(),
		})
	}

	return &ports.SubmissionResult{
		Accepted:      true,
		PendingReview: attempt.PendingReview,
		RewardGranted: attempt.RewardGranted,
		Score:         attempt.EngagementScore,
		Attempt:       attempt,
	}, nil
}

func (s *ArbiterService) recordTimeline(ctx context.Context, eventType string, status domain.EventStatus, attempt *domain.EngagementAttempt, meta domain.JSONB) {
	taskID := attempt.TaskID
	if meta == nil {
		meta = domain.JSONB{}
	}
	meta["attempt_id"] = attempt.ID
	meta["user_id"] = attempt.UserID
	event := &domain.TimelineEvent{
		Type:         eventType,
		Status:       status,
		Meta:         meta,
		ResourceID:   &taskID,
		ResourceType: "task",
	}
	if err := s.timelineRepo.Create(ctx, event); err != nil {
		s.logger.Warnw("arbiter_timeline_write_failed", "attempt_id", attempt.ID, "error", err)
	}
}
