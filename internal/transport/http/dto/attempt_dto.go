package dto

import (
	"time"

	"github.com/earnly/backend/internal/core/ports"
	"github.com/earnly/backend/internal/domain"
	"github.com/shopspring/decimal"
)

type AttemptResponse struct {
	ID            string              `json:"id"`
	TaskID        uint                `json:"task_id"`
	State         domain.AttemptState `json:"state"`
	AttemptNumber int                 `json:"attempt_number"`
	StartedAt     time.Time           `json:"started_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	DecidedAt     *time.Time          `json:"decided_at,omitempty"`

	ElapsedSeconds   int  `json:"elapsed_seconds"`
	ScrollPercentage int  `json:"scroll_percentage"`
	InteractionCount int  `json:"interaction_count"`
	AdClickCount     int  `json:"ad_click_count"`
	ContentLoaded    bool `json:"content_loaded"`
	CrossOrigin      bool `json:"cross_origin"`

	Reason          domain.RejectionReason `json:"reason,omitempty"`
	EngagementScore float64                `json:"engagement_score"`
	PendingReview   bool                   `json:"pending_review"`
	RewardGranted   decimal.Decimal        `json:"reward_granted"`
}

func AttemptToResponse(attempt *domain.EngagementAttempt) AttemptResponse {
	return AttemptResponse{
		ID:               attempt.ID,
		TaskID:           attempt.TaskID,
		State:            attempt.State,
		AttemptNumber:    attempt.AttemptNumber,
		StartedAt:        attempt.StartedAt,
		SubmittedAt:      attempt.SubmittedAt,
		DecidedAt:        attempt.DecidedAt,
		ElapsedSeconds:   attempt.ElapsedSeconds,
		ScrollPercentage: attempt.ScrollPercentage,
		InteractionCount: attempt.InteractionCount,
		AdClickCount:     attempt.AdClickCount,
		ContentLoaded:    attempt.ContentLoaded,
		CrossOrigin:      attempt.CrossOrigin,
		Reason:           attempt.Reason,
		EngagementScore:  attempt.EngagementScore,
		PendingReview:    attempt.PendingReview,
		RewardGranted:    attempt.RewardGranted,
	}
}

type ReportSignalRequest struct {
	Kind             string               `json:"kind"`
	ScrollPercentage int                  `json:"scroll_percentage,omitempty"`
	Ancestors        []domain.ElementInfo `json:"ancestors,omitempty"`
	Manual           bool                 `json:"manual,omitempty"`
}

func (r *ReportSignalRequest) Validate() []string {
	var errors []string

	switch domain.ContentEventKind(r.Kind) {
	case domain.ContentEventScroll, domain.ContentEventInteraction,
		domain.ContentEventClick, domain.ContentEventAdClick, domain.ContentEventLoaded:
	default:
		errors = append(errors, "kind must be one of: scroll, interaction, click, ad_click, loaded")
	}

	if domain.ContentEventKind(r.Kind) == domain.ContentEventScroll &&
		(r.ScrollPercentage < 0 || r.ScrollPercentage > 100) {
		errors = append(errors, "scroll_percentage must be between 0 and 100")
	}

	return errors
}

func (r *ReportSignalRequest) ToEvent() domain.ContentEvent {
	return domain.ContentEvent{
		Kind:             domain.ContentEventKind(r.Kind),
		ScrollPercentage: r.ScrollPercentage,
		Ancestors:        r.Ancestors,
		Manual:           r.Manual,
	}
}

type SignalReportResponse struct {
	Snapshot    domain.SignalSnapshot `json:"snapshot"`
	MayComplete bool                  `json:"may_complete"`
	Score       float64               `json:"score"`
}

type SubmitAttemptRequest struct {
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	ScrollPercentage int    `json:"scroll_percentage"`
	InteractionCount int    `json:"interaction_count"`
	AdClickCount     int    `json:"ad_click_count"`
	Loaded           bool   `json:"loaded"`
	ProofText        string `json:"proof_text,omitempty"`
}

func (r *SubmitAttemptRequest) Validate() []string {
	var errors []string
	if r.ElapsedSeconds < 0 || r.ScrollPercentage < 0 || r.ScrollPercentage > 100 ||
		r.InteractionCount < 0 || r.AdClickCount < 0 {
		errors = append(errors, "signal values must be non-negative and scroll_percentage at most 100")
	}
	return errors
}

func (r *SubmitAttemptRequest) ToInput() ports.SubmitInput {
	return ports.SubmitInput{
		Snapshot: domain.SignalSnapshot{
			ElapsedSeconds:   r.ElapsedSeconds,
			ScrollPercentage: r.ScrollPercentage,
			InteractionCount: r.InteractionCount,
			AdClickCount:     r.AdClickCount,
			Loaded:           r.Loaded,
		},
		ProofText: r.ProofText,
	}
}

type SubmissionResponse struct {
	Accepted      bool                   `json:"accepted"`
	Reason        domain.RejectionReason `json:"reason,omitempty"`
	PendingReview bool                   `json:"pending_review"`
	RewardGranted decimal.Decimal        `json:"reward_granted"`
	Score         float64                `json:"score"`
	Attempt       *AttemptResponse       `json:"attempt,omitempty"`
}

func SubmissionToResponse(result *ports.SubmissionResult) SubmissionResponse {
	resp := SubmissionResponse{
		Accepted:      result.Accepted,
		Reason:        result.Reason,
		PendingReview: result.PendingReview,
		RewardGranted: result.RewardGranted,
		Score:         result.Score,
	}
	if result.Attempt != nil {
		attempt := AttemptToResponse(result.Attempt)
		resp.Attempt = &attempt
	}
	return resp
}

type RewardListResponse struct {
	Rewards []RewardEntryResponse `json:"rewards"`
	Total   decimal.Decimal       `json:"total"`
}

type RewardEntryResponse struct {
	AttemptID string          `json:"attempt_id"`
	TaskID    uint            `json:"task_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
