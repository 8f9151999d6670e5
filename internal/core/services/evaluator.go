package services

import (
	"github.com/earnly/backend/internal/domain"
)

// Minimum interaction count considered proof of attention when a task
// requires interaction.
const interactionThreshold = 3

// Score weights for the four engagement ratios.
const (
	weightTime        = 0.4
	weightScroll      = 0.3
	weightInteraction = 0.2
	weightAdClicks    = 0.1
)

// MayComplete is the completion gate: a pure function of the submitted
// snapshot and the task's declared requirements. It is evaluated
// client-advisorily on every signal change and re-derived by the arbiter
// at submission; both paths go through here.
//
// A task without embedded content has no loaded/scroll requirement and is
// completable as soon as it was started.
func MayComplete(task *domain.TaskDefinition, snap domain.SignalSnapshot) bool {
	if !task.HasContent() {
		return true
	}
	if !snap.Loaded {
		return false
	}
	if snap.ElapsedSeconds < task.MinDurationSeconds {
		return false
	}
	if task.RequireScrolling && snap.ScrollPercentage < task.MinScrollPercentage {
		return false
	}
	if task.RequireInteraction && snap.InteractionCount < interactionThreshold {
		return false
	}
	if task.MinAdClicks > 0 && snap.AdClickCount < task.MinAdClicks {
		return false
	}
	return true
}

// FailureReason names the first unmet requirement, checked in the same
// order as MayComplete. Returns "" when the gate passes.
func FailureReason(task *domain.TaskDefinition, snap domain.SignalSnapshot) domain.RejectionReason {
	if !task.HasContent() {
		return ""
	}
	if !snap.Loaded {
		return domain.ReasonContentNotLoaded
	}
	if snap.ElapsedSeconds < task.MinDurationSeconds {
		return domain.ReasonInsufficientTime
	}
	if task.RequireScrolling && snap.ScrollPercentage < task.MinScrollPercentage {
		return domain.ReasonInsufficientScroll
	}
	if task.RequireInteraction && snap.InteractionCount < interactionThreshold {
		return domain.ReasonInsufficientInteraction
	}
	if task.MinAdClicks > 0 && snap.AdClickCount < task.MinAdClicks {
		return domain.ReasonInsufficientAdClicks
	}
	return ""
}

// EngagementScore is a continuous proxy for how thoroughly the user
// consumed the content: a weighted combination of the four requirement
// ratios, each clamped to [0, 1]. A requirement the task does not declare
// contributes a full ratio. Observability only, never a gate.
func EngagementScore(task *domain.TaskDefinition, snap domain.SignalSnapshot) float64 {
	timeRatio := 1.0
	if task.MinDurationSeconds > 0 {
		timeRatio = clampRatio(float64(snap.ElapsedSeconds) / float64(task.MinDurationSeconds))
	}

	scrollRatio := 1.0
	if task.RequireScrolling && task.MinScrollPercentage > 0 {
		scrollRatio = clampRatio(float64(snap.ScrollPercentage) / float64(task.MinScrollPercentage))
	}

	interactionRatio := 1.0
	if task.RequireInteraction {
		interactionRatio = clampRatio(float64(snap.InteractionCount) / float64(interactionThreshold))
	}

	adRatio := 1.0
	if task.MinAdClicks > 0 {
		adRatio = clampRatio(float64(snap.AdClickCount) / float64(task.MinAdClicks))
	}

	return weightTime*timeRatio +
		weightScroll*scrollRatio +
		weightInteraction*interactionRatio +
		weightAdClicks*adRatio
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
