package db

import (
	"context"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type rewardRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardRepository(db *gorm.DB, log *logger.Logger) ports.RewardRepository {
	return &rewardRepository{db: db, log: log}
}

func (r *rewardRepository) GetByUser(ctx context.Context, userID uint) ([]domain.RewardEntry, error) {
	var entries []domain.RewardEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		r.log.Errorw("reward_repo_get_by_user_failed", "user_id", userID, "error", err)
		return nil, err
	}
	r.log.Infow("reward_repo_get_by_user_ok", "user_id", userID, "count", len(entries))
	return entries, nil
}

func (r *rewardRepository) GetByAttemptID(ctx context.Context, attemptID string) (*domain.RewardEntry, error) {
	var entry domain.RewardEntry
	if err := r.db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
