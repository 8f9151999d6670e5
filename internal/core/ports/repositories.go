package ports

import (
	"context"
	"time"

	"github.com/earnly/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.TaskDefinition) error
	GetByID(ctx context.Context, id uint) (*domain.TaskDefinition, error)
	GetActive(ctx context.Context) ([]domain.TaskDefinition, error)
	GetAll(ctx context.Context) ([]domain.TaskDefinition, error)
	Update(ctx context.Context, task *domain.TaskDefinition) error
	Deactivate(ctx context.Context, id uint) error
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.EngagementAttempt) error
	GetByID(ctx context.Context, id string) (*domain.EngagementAttempt, error)
	GetByTaskAndUser(ctx context.Context, taskID, userID uint) ([]domain.EngagementAttempt, error)
	GetByUser(ctx context.Context, userID uint) ([]domain.EngagementAttempt, error)
	Update(ctx context.Context, attempt *domain.EngagementAttempt) error
	CountAcceptedSince(ctx context.Context, userID uint, since time.Time) (int64, error)

	// Decide persists the arbiter's verdict and, when reward is non-nil,
	// credits it in the same transaction. Crediting is idempotent per
	// attempt id; a second decision for an already-credited attempt must
	// not produce a second ledger row.
	Decide(ctx context.Context, attempt *domain.EngagementAttempt, reward *domain.RewardEntry) error
}

type RewardRepository interface {
	GetByUser(ctx context.Context, userID uint) ([]domain.RewardEntry, error)
	GetByAttemptID(ctx context.Context, attemptID string) (*domain.RewardEntry, error)
}

type TimelineRepository interface {
	Create(ctx context.Context, event *domain.TimelineEvent) error
	GetByID(ctx context.Context, id uint) (*domain.TimelineEvent, error)
	GetByResource(ctx context.Context, resourceType string, resourceID uint) ([]domain.TimelineEvent, error)
	GetAll(ctx context.Context, limit int) ([]domain.TimelineEvent, error)
}

type SystemSettingRepository interface {
	Get(ctx context.Context, key string) (*domain.SystemSetting, error)
	Set(ctx context.Context, setting *domain.SystemSetting) error
	GetByCategory(ctx context.Context, category string) ([]domain.SystemSetting, error)
	Delete(ctx context.Context, key string) error
}
