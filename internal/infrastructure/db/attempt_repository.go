package db

import (
	"context"
	"time"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attemptRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepository(db *gorm.DB, log *logger.Logger) ports.AttemptRepository {
	return &attemptRepository{db: db, log: log}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *domain.EngagementAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		r.log.Errorw("attempt_repo_create_failed", "task_id", attempt.TaskID, "user_id", attempt.UserID, "error", err)
		return err
	}
	r.log.Infow("attempt_repo_create_ok", "id", attempt.ID, "task_id", attempt.TaskID, "user_id", attempt.UserID)
	return nil
}

func (r *attemptRepository) GetByID(ctx context.Context, id string) (*domain.EngagementAttempt, error) {
	var attempt domain.EngagementAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		r.log.Errorw("attempt_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) GetByTaskAndUser(ctx context.Context, taskID, userID uint) ([]domain.EngagementAttempt, error) {
	var attempts []domain.EngagementAttempt
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at asc").
		Find(&attempts).Error
	if err != nil {
		r.log.Errorw("attempt_repo_get_by_task_user_failed", "task_id", taskID, "user_id", userID, "error", err)
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) GetByUser(ctx context.Context, userID uint) ([]domain.EngagementAttempt, error) {
	var attempts []domain.EngagementAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&attempts).Error
	if err != nil {
		r.log.Errorw("attempt_repo_get_by_user_failed", "user_id", userID, "error", err)
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) Update(ctx context.Context, attempt *domain.EngagementAttempt) error {
	if err := r.db.WithContext(ctx).Save(attempt).Error; err != nil {
		r.log.Errorw("attempt_repo_update_failed", "id", attempt.ID, "error", err)
		return err
	}
	return nil
}

func (r *attemptRepository) CountAcceptedSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.EngagementAttempt{}).
		Where("user_id = ? AND state = ? AND decided_at >= ?", userID, domain.AttemptStateAccepted, since).
		Count(&count).Error
	if err != nil {
		r.log.Errorw("attempt_repo_count_accepted_failed", "user_id", userID, "error", err)
		return 0, err
	}
	return count, nil
}

// rewardConflictClause makes the ledger insert ignore a duplicate
// attempt_id. The unique index on reward_entries(attempt_id) is partial
// (WHERE deleted_at IS NULL), and Postgres only infers a partial index as
// the conflict arbiter when the statement repeats its predicate, so the
// clause must carry the same WHERE.
func rewardConflictClause() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "deleted_at IS NULL"},
		}},
		DoNothing: true,
	}
}

// Decide writes the verdict and the reward in one transaction. The ledger
// insert ignores an attempt_id conflict, so replaying a decision can never
// produce a second credit.
func (r *attemptRepository) Decide(ctx context.Context, attempt *domain.EngagementAttempt, reward *domain.RewardEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}
		if reward != nil {
			if err := tx.Clauses(rewardConflictClause()).Create(reward).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.Errorw("attempt_repo_decide_failed", "id", attempt.ID, "state", attempt.State, "error", err)
		return err
	}
	r.log.Infow("attempt_repo_decide_ok", "id", attempt.ID, "state", attempt.State, "credited", reward != nil)
	return nil
}
