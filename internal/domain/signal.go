package domain

import "time"

// SignalSnapshot is the accumulated engagement evidence for one attempt.
// All counts are non-negative; scroll percentage is clamped to 0-100 and
// only ever increases over an attempt's lifetime.
type SignalSnapshot struct {
	ElapsedSeconds   int  `json:"elapsed_seconds"`
	ScrollPercentage int  `json:"scroll_percentage"`
	InteractionCount int  `json:"interaction_count"`
	AdClickCount     int  `json:"ad_click_count"`
	Loaded           bool `json:"loaded"`
	CrossOrigin      bool `json:"cross_origin"`
}

type ContentEventKind string

const (
	ContentEventScroll      ContentEventKind = "scroll"
	ContentEventInteraction ContentEventKind = "interaction"
	ContentEventClick       ContentEventKind = "click"
	ContentEventAdClick     ContentEventKind = "ad_click"
	ContentEventLoaded      ContentEventKind = "loaded"
)

// ContentEvent is one observation forwarded from the embedding surface,
// either by the in-frame reporter or by the host-side fallback.
type ContentEvent struct {
	Kind ContentEventKind `json:"kind"`

	// Scroll events only; percentage of the content scrolled past.
	ScrollPercentage int `json:"scroll_percentage,omitempty"`

	// Click events only; ancestor chain of the clicked element, innermost
	// first, used for ad-click classification.
	Ancestors []ElementInfo `json:"ancestors,omitempty"`

	// Set when the user asserted the ad click through the manual
	// affordance (cross-origin attempts only).
	Manual bool `json:"manual,omitempty"`
}

// ElementInfo is the reporter's description of one DOM ancestor of a
// clicked element. Only the attributes the ad heuristics look at.
type ElementInfo struct {
	TagName string   `json:"tag_name,omitempty"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
	Rel     string   `json:"rel,omitempty"`
	Href    string   `json:"href,omitempty"`
}

// EligibilitySnapshot is derived per user on every task-list fetch; it is
// never persisted as primary truth.
type EligibilitySnapshot struct {
	RegionBlocked        bool   `json:"region_blocked"`
	RegionCode           string `json:"region_code,omitempty"`
	RegionName           string `json:"region_name,omitempty"`
	ReferralRequired     bool   `json:"referral_required"`
	DailyCompletionsUsed int    `json:"daily_completions_used"`
	DailyQuota           int    `json:"daily_quota"`
}

func (e EligibilitySnapshot) QuotaReached() bool {
	return e.DailyQuota > 0 && e.DailyCompletionsUsed >= e.DailyQuota
}

type LiveEventType string

const (
	LiveEventConnected   LiveEventType = "connected"
	LiveEventTaskCreated LiveEventType = "task_created"
	LiveEventTaskUpdated LiveEventType = "task_updated"
	LiveEventHeartbeat   LiveEventType = "heartbeat"
)

// LiveEvent is a push notification to a connected client. It carries no
// authoritative state; clients treat it as a cache-invalidation hint and
// re-fetch the task list.
type LiveEvent struct {
	Type      LiveEventType `json:"type"`
	TaskID    uint          `json:"task_id,omitempty"`
	AttemptID string        `json:"attempt_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
