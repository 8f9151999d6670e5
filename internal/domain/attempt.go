package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AttemptState string

const (
	AttemptStateStarted    AttemptState = "started"
	AttemptStateInProgress AttemptState = "in_progress"
	AttemptStateSubmitted  AttemptState = "submitted"
	AttemptStateAccepted   AttemptState = "accepted"
	AttemptStateRejected   AttemptState = "rejected"
)

// attemptTransitions is the full legality table. States only move forward;
// rejected is re-enterable from submitted but never leads back to accepted
// on the same attempt (a retry resubmits from in_progress).
var attemptTransitions = map[AttemptState][]AttemptState{
	AttemptStateStarted:    {AttemptStateInProgress, AttemptStateSubmitted},
	AttemptStateInProgress: {AttemptStateSubmitted},
	AttemptStateSubmitted:  {AttemptStateAccepted, AttemptStateRejected},
	// A rejection for insufficient signals keeps the attempt usable: the
	// client keeps accumulating and resubmits.
	AttemptStateRejected: {AttemptStateSubmitted},
	AttemptStateAccepted: {},
}

func (s AttemptState) CanTransitionTo(next AttemptState) bool {
	for _, allowed := range attemptTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state permits no further transitions.
func (s AttemptState) Terminal() bool {
	return len(attemptTransitions[s]) == 0
}

type RejectionReason string

const (
	ReasonInsufficientTime        RejectionReason = "insufficient_time"
	ReasonInsufficientScroll      RejectionReason = "insufficient_scroll"
	ReasonInsufficientInteraction RejectionReason = "insufficient_interaction"
	ReasonInsufficientAdClicks    RejectionReason = "insufficient_ad_clicks"
	ReasonContentNotLoaded        RejectionReason = "content_not_loaded"
	ReasonQuotaExceeded           RejectionReason = "quota_exceeded"
	ReasonExpired                 RejectionReason = "expired"
)

// EngagementAttempt is one user's try at one task. Owned exclusively by the
// lifecycle service; mutated only through legal transitions; never deleted.
type EngagementAttempt struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TaskID uint            `gorm:"not null;index:idx_attempts_task_user" json:"task_id"`
	Task   *TaskDefinition `gorm:"constraint:OnDelete:CASCADE" json:"task,omitempty"`
	UserID uint            `gorm:"not null;index:idx_attempts_task_user" json:"user_id"`
	User   *User           `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	State         AttemptState `gorm:"size:20;not null;default:'started';index" json:"state"`
	AttemptNumber int          `gorm:"default:1" json:"attempt_number"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`

	// Signal snapshot as last reported / submitted.
	ElapsedSeconds   int  `gorm:"default:0" json:"elapsed_seconds"`
	ScrollPercentage int  `gorm:"default:0" json:"scroll_percentage"`
	InteractionCount int  `gorm:"default:0" json:"interaction_count"`
	AdClickCount     int  `gorm:"default:0" json:"ad_click_count"`
	ContentLoaded    bool `gorm:"default:false" json:"content_loaded"`
	CrossOrigin      bool `gorm:"default:false" json:"cross_origin"`

	// Free-text proof for tasks without embedded content.
	ProofText string `gorm:"type:text" json:"proof_text,omitempty"`

	Reason          RejectionReason `gorm:"size:40" json:"reason,omitempty"`
	EngagementScore float64         `gorm:"default:0" json:"engagement_score"`
	PendingReview   bool            `gorm:"default:false" json:"pending_review"`
	RewardGranted   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"reward_granted"`
}

func (a *EngagementAttempt) Snapshot() SignalSnapshot {
	return SignalSnapshot{
		ElapsedSeconds:   a.ElapsedSeconds,
		ScrollPercentage: a.ScrollPercentage,
		InteractionCount: a.InteractionCount,
		AdClickCount:     a.AdClickCount,
		Loaded:           a.ContentLoaded,
		CrossOrigin:      a.CrossOrigin,
	}
}

// ApplySnapshot merges a reported snapshot into the attempt without letting
// any signal regress.
func (a *EngagementAttempt) ApplySnapshot(snap SignalSnapshot) {
	if snap.ElapsedSeconds > a.ElapsedSeconds {
		a.ElapsedSeconds = snap.ElapsedSeconds
	}
	if snap.ScrollPercentage > a.ScrollPercentage {
		a.ScrollPercentage = snap.ScrollPercentage
	}
	if snap.InteractionCount > a.InteractionCount {
		a.InteractionCount = snap.InteractionCount
	}
	if snap.AdClickCount > a.AdClickCount {
		a.AdClickCount = snap.AdClickCount
	}
	if snap.Loaded {
		a.ContentLoaded = true
	}
	a.CrossOrigin = a.CrossOrigin || snap.CrossOrigin
}

// Expired reports whether the attempt outlived the task's time limit at the
// given instant. A zero limit never expires.
func (a *EngagementAttempt) Expired(task *TaskDefinition, now time.Time) bool {
	if task.TimeLimitMinutes <= 0 {
		return false
	}
	return now.Sub(a.StartedAt) > time.Duration(task.TimeLimitMinutes)*time.Minute
}
