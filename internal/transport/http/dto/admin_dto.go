package dto

import (
	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type PublishTaskRequest struct {
	Title               string `json:"title" validate:"required"`
	Reward              string `json:"reward" validate:"required"`
	Difficulty          string `json:"difficulty"`
	Category            string `json:"category"`
	ContentURL          string `json:"content_url,omitempty"`
	MinDurationSeconds  int    `json:"min_duration_seconds"`
	RequireScrolling    bool   `json:"require_scrolling"`
	MinScrollPercentage int    `json:"min_scroll_percentage"`
	RequireInteraction  bool   `json:"require_interaction"`
	MinAdClicks         int    `json:"min_ad_clicks"`
	MaxAttempts         int    `json:"max_attempts"`
	TimeLimitMinutes    int    `json:"time_limit_minutes"`
	ManualReview        bool   `json:"manual_review"`
}

func (r *PublishTaskRequest) Validate() []string {
	var errors []string

	if r.Title == "" {
		errors = append(errors, "title is required")
	}

	if r.Reward == "" {
		errors = append(errors, "reward is required")
	} else if reward, err := decimal.NewFromString(r.Reward); err != nil {
		errors = append(errors, "reward is not a valid decimal amount")
	} else if reward.IsNegative() {
		errors = append(errors, "reward must not be negative")
	}

	if r.Difficulty != "" && r.Difficulty != "easy" && r.Difficulty != "medium" && r.Difficulty != "hard" {
		errors = append(errors, "difficulty must be one of: easy, medium, hard")
	}

	if r.MinScrollPercentage < 0 || r.MinScrollPercentage > 100 {
		errors = append(errors, "min_scroll_percentage must be between 0 and 100")
	}

	if r.RequireScrolling && r.ContentURL == "" {
		errors = append(errors, "content_url is required when require_scrolling is set")
	}

	return errors
}

func (r *PublishTaskRequest) ToInput() ports.PublishTaskInput {
	reward, _ := decimal.NewFromString(r.Reward)
	return ports.PublishTaskInput{
		Title:               r.Title,
		Reward:              reward,
		Difficulty:          domain.TaskDifficulty(r.Difficulty),
		Category:            domain.TaskCategory(r.Category),
		ContentURL:          r.ContentURL,
		MinDurationSeconds:  r.MinDurationSeconds,
		RequireScrolling:    r.RequireScrolling,
		MinScrollPercentage: r.MinScrollPercentage,
		RequireInteraction:  r.RequireInteraction,
		MinAdClicks:         r.MinAdClicks,
		MaxAttempts:         r.MaxAttempts,
		TimeLimitMinutes:    r.TimeLimitMinutes,
		ManualReview:        r.ManualReview,
	}
}

type UpdateSettingRequest struct {
	Key      string `json:"key" validate:"required"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

func (r *UpdateSettingRequest) Validate() []string {
	var errors []string
	if r.Key == "" {
		errors = append(errors, "key is required")
	}
	return errors
}
