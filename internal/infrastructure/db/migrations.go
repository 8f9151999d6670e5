package db

import (
	"github.com/earnly/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// AutoMigrate all models
	err := db.AutoMigrate(
		&domain.User{},
		&domain.TaskDefinition{},
		&domain.EngagementAttempt{},
		&domain.RewardEntry{},
		&domain.TimelineEvent{},
		&domain.SystemSetting{},
	)
	if err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// One ledger row per attempt: this index is the at-most-once credit
	// guarantee the arbiter relies on.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reward_entries_attempt
		ON reward_entries (attempt_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Attempt lookups are always scoped to (task, user).
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_attempts_task_user_state
		ON engagement_attempts (task_id, user_id, state)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Index for timeline events querying by resource
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_timeline_events_resource
		ON timeline_events (resource_type, resource_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	return nil
}
