package dto

import (
	"time"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type TaskResponse struct {
	ID                  uint                  `json:"id"`
	Title               string                `json:"title"`
	Reward              decimal.Decimal       `json:"reward"`
	Difficulty          domain.TaskDifficulty `json:"difficulty"`
	Category            domain.TaskCategory   `json:"category"`
	ContentURL          string                `json:"content_url,omitempty"`
	MinDurationSeconds  int                   `json:"min_duration_seconds"`
	RequireScrolling    bool                  `json:"require_scrolling"`
	MinScrollPercentage int                   `json:"min_scroll_percentage"`
	RequireInteraction  bool                  `json:"require_interaction"`
	MinAdClicks         int                   `json:"min_ad_clicks"`
	MaxAttempts         int                   `json:"max_attempts"`
	TimeLimitMinutes    int                   `json:"time_limit_minutes"`
	ManualReview        bool                  `json:"manual_review"`
	IsActive            bool                  `json:"is_active"`
	CreatedAt           time.Time             `json:"created_at"`
}

type TaskOverviewResponse struct {
	TaskResponse
	CanStart     bool             `json:"can_start"`
	InProgress   bool             `json:"in_progress"`
	IsCompleted  bool             `json:"is_completed"`
	IsExhausted  bool             `json:"is_exhausted"`
	Progress     float64          `json:"progress"`
	ActiveAttempt *AttemptResponse `json:"active_attempt,omitempty"`
}

type TaskListResponse struct {
	Tasks       []TaskOverviewResponse `json:"tasks"`
	Eligibility EligibilityResponse    `json:"eligibility"`
}

type EligibilityResponse struct {
	RegionBlocked        bool   `json:"region_blocked"`
	RegionCode           string `json:"region_code,omitempty"`
	RegionName           string `json:"region_name,omitempty"`
	ReferralRequired     bool   `json:"referral_required"`
	DailyCompletionsUsed int    `json:"daily_completions_used"`
	DailyQuota           int    `json:"daily_quota"`
}

func TaskToResponse(task *domain.TaskDefinition) TaskResponse {
	return TaskResponse{
		ID:                  task.ID,
		Title:               task.Title,
		Reward:              task.Reward,
		Difficulty:          task.Difficulty,
		Category:            task.Category,
		ContentURL:          task.ContentURL,
		MinDurationSeconds:  task.MinDurationSeconds,
		RequireScrolling:    task.RequireScrolling,
		MinScrollPercentage: task.MinScrollPercentage,
		RequireInteraction:  task.RequireInteraction,
		MinAdClicks:         task.MinAdClicks,
		MaxAttempts:         task.MaxAttempts,
		TimeLimitMinutes:    task.TimeLimitMinutes,
		ManualReview:        task.ManualReview,
		IsActive:            task.IsActive,
		CreatedAt:           task.CreatedAt,
	}
}

func EligibilityToResponse(snap domain.EligibilitySnapshot) EligibilityResponse {
	return EligibilityResponse{
		RegionBlocked:        snap.RegionBlocked,
		RegionCode:           snap.RegionCode,
		RegionName:           snap.RegionName,
		ReferralRequired:     snap.ReferralRequired,
		DailyCompletionsUsed: snap.DailyCompletionsUsed,
		DailyQuota:           snap.DailyQuota,
	}
}

func OverviewsToResponse(overviews []ports.TaskOverview, snap domain.EligibilitySnapshot) TaskListResponse {
	tasks := make([]TaskOverviewResponse, 0, len(overviews))
	for i := range overviews {
		o := overviews[i]
		resp := TaskOverviewResponse{
			TaskResponse: TaskToResponse(&o.Task),
			CanStart:     o.CanStart,
			InProgress:   o.InProgress,
			IsCompleted:  o.Completed,
			IsExhausted:  o.Exhausted,
			Progress:     o.Progress,
		}
		if o.Attempt != nil {
			attempt := AttemptToResponse(o.Attempt)
			resp.ActiveAttempt = &attempt
		}
		tasks = append(tasks, resp)
	}
	return TaskListResponse{
		Tasks:       tasks,
		Eligibility: EligibilityToResponse(snap),
	}
}
