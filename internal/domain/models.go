package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== ENUMS ====================

type TaskDifficulty string

const (
	TaskDifficultyEasy   TaskDifficulty = "easy"
	TaskDifficultyMedium TaskDifficulty = "medium"
	TaskDifficultyHard   TaskDifficulty = "hard"
)

type TaskCategory string

const (
	TaskCategoryArticle TaskCategory = "article"
	TaskCategoryVideo   TaskCategory = "video"
	TaskCategorySurvey  TaskCategory = "survey"
	TaskCategoryOther   TaskCategory = "other"
)

type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	EventStatusSuccess EventStatus = "success"
	EventStatusFailed  EventStatus = "failed"
)

// ==================== JSONB TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSONB: invalid type")
	}
	return json.Unmarshal(bytes, j)
}

// ==================== ENTITIES ====================

// User carries the externally-managed account facts the eligibility gate
// reads. Region and access flags are written by the account/region
// collaborators, never derived here.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Username       string    `gorm:"size:255;not null" json:"username"`
	APIToken       string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	RegionCode     string    `gorm:"size:8;index" json:"region_code"`
	RegionName     string    `gorm:"size:100" json:"region_name,omitempty"`
	AccessDisabled bool      `gorm:"default:false" json:"access_disabled"`
	RegisteredAt   time.Time `json:"registered_at"`

	// Qualifying referrals; maintained by the referral collaborator.
	ReferralCount int `gorm:"default:0" json:"referral_count"`
}

// TaskDefinition is the immutable template an admin publishes. The engine
// treats it as read-only; edits come through the admin endpoints only.
type TaskDefinition struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title      string          `gorm:"size:255;not null" json:"title"`
	Reward     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"reward"`
	Difficulty TaskDifficulty  `gorm:"size:20;not null;default:'easy'" json:"difficulty"`
	Category   TaskCategory    `gorm:"size:20;not null;default:'other'" json:"category"`
	IsActive   bool            `gorm:"default:true;index" json:"is_active"`

	// Engagement requirements. A task without ContentURL has no embedded
	// surface and is evaluated purely on explicit completion.
	ContentURL          string `gorm:"type:text" json:"content_url,omitempty"`
	MinDurationSeconds  int    `gorm:"default:0" json:"min_duration_seconds"`
	RequireScrolling    bool   `gorm:"default:false" json:"require_scrolling"`
	MinScrollPercentage int    `gorm:"default:0" json:"min_scroll_percentage"`
	RequireInteraction  bool   `gorm:"default:false" json:"require_interaction"`
	MinAdClicks         int    `gorm:"default:0" json:"min_ad_clicks"`
	MaxAttempts         int    `gorm:"default:1" json:"max_attempts"`
	TimeLimitMinutes    int    `gorm:"default:0" json:"time_limit_minutes"`

	// Rewards for these tasks are parked for moderation instead of being
	// credited on acceptance.
	ManualReview bool `gorm:"default:false" json:"manual_review"`
}

func (t *TaskDefinition) HasContent() bool {
	return t.ContentURL != ""
}

// RewardEntry is one credited reward in the ledger. The unique index on
// attempt_id is what makes crediting at-most-once per attempt.
type RewardEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      *User           `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	// Uniqueness is enforced by a partial index in migrations so soft
	// deleted rows do not block a re-credit.
	AttemptID string          `gorm:"size:36;index;not null" json:"attempt_id"`
	TaskID    uint            `gorm:"not null;index" json:"task_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
}

// TimelineEvent is the audit trail: every lifecycle transition and every
// arbiter decision lands here. Rows are never deleted.
type TimelineEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Type         string      `gorm:"size:100;not null;index" json:"type"`
	Status       EventStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Message      string      `gorm:"type:text" json:"message"`
	Meta         JSONB       `gorm:"type:jsonb" json:"meta"`
	ResourceID   *uint       `gorm:"index" json:"resource_id,omitempty"`
	ResourceType string      `gorm:"size:100;index" json:"resource_type"`
}

// Timeline event types
const (
	EventTypeAttemptStarted   = "ATTEMPT_STARTED"
	EventTypeAttemptSubmitted = "ATTEMPT_SUBMITTED"
	EventTypeAttemptAccepted  = "ATTEMPT_ACCEPTED"
	EventTypeAttemptRejected  = "ATTEMPT_REJECTED"
	EventTypeRewardCredited   = "REWARD_CREDITED"
	EventTypeTaskPublished    = "TASK_PUBLISHED"
	EventTypeTaskUpdated      = "TASK_UPDATED"
)

type SystemSetting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Key      string `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Value    string `gorm:"type:text" json:"value"`
	Type     string `gorm:"size:50;default:'string'" json:"type"`
	Category string `gorm:"size:100;index" json:"category"`
}
