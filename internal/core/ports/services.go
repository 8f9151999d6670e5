package ports

import (
	"context"
	"time"

	"github.com/earnly/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TaskOverview is one row of the task list as the UI sees it: the template
// plus this user's derived per-task state.
type TaskOverview struct {
	Task       domain.TaskDefinition     `json:"task"`
	Attempt    *domain.EngagementAttempt `json:"attempt,omitempty"`
	CanStart   bool                      `json:"can_start"`
	InProgress bool                      `json:"in_progress"`
	Completed  bool                      `json:"completed"`
	Exhausted  bool                      `json:"exhausted"`
	Progress   float64                   `json:"progress"`
}

// SignalReport is what the lifecycle service hands back after folding a
// content event into an attempt. MayComplete is advisory only; the arbiter
// re-derives it at submission.
type SignalReport struct {
	Snapshot    domain.SignalSnapshot `json:"snapshot"`
	MayComplete bool                  `json:"may_complete"`
	Score       float64               `json:"score"`
}

type SubmitInput struct {
	Snapshot  domain.SignalSnapshot
	ProofText string
}

type SubmissionResult struct {
	Accepted      bool                      `json:"accepted"`
	Reason        domain.RejectionReason    `json:"reason,omitempty"`
	PendingReview bool                      `json:"pending_review"`
	RewardGranted decimal.Decimal           `json:"reward_granted"`
	Score         float64                   `json:"score"`
	Attempt       *domain.EngagementAttempt `json:"attempt,omitempty"`
}

type LifecycleService interface {
	ListTasks(ctx context.Context, user *domain.User) ([]TaskOverview, domain.EligibilitySnapshot, error)
	StartTask(ctx context.Context, user *domain.User, taskID uint) (*domain.EngagementAttempt, error)
	ReportSignal(ctx context.Context, user *domain.User, attemptID string, event domain.ContentEvent) (*SignalReport, error)
	SubmitAttempt(ctx context.Context, user *domain.User, attemptID string, input SubmitInput) (*SubmissionResult, error)
}

type EligibilityService interface {
	Snapshot(ctx context.Context, user *domain.User) (domain.EligibilitySnapshot, error)
	// CheckStart returns a sentinel error naming the first gate that
	// denies the user, or nil when starting is allowed.
	CheckStart(ctx context.Context, user *domain.User) error
}

type ArbiterService interface {
	Decide(ctx context.Context, user *domain.User, attemptID string, input SubmitInput, now time.Time) (*SubmissionResult, error)
}

type AdminTaskService interface {
	PublishTask(ctx context.Context, input PublishTaskInput) (*domain.TaskDefinition, error)
	UpdateTask(ctx context.Context, id uint, input PublishTaskInput) (*domain.TaskDefinition, error)
	DeactivateTask(ctx context.Context, id uint) error
}

type PublishTaskInput struct {
	Title               string
	Reward              decimal.Decimal
	Difficulty          domain.TaskDifficulty
	Category            domain.TaskCategory
	ContentURL          string
	MinDurationSeconds  int
	RequireScrolling    bool
	MinScrollPercentage int
	RequireInteraction  bool
	MinAdClicks         int
	MaxAttempts         int
	TimeLimitMinutes    int
	ManualReview        bool
}

// EventPublisher pushes live events to connected clients. Publish targets
// every open client of one user; Broadcast reaches all connected users.
type EventPublisher interface {
	Publish(userID uint, event domain.LiveEvent)
	Broadcast(event domain.LiveEvent)
}
