package services

import "errors"

// Eligibility errors
var (
	ErrRegionBlocked    = errors.New("eligibility: region blocked")
	ErrReferralRequired = errors.New("eligibility: referral required")
	ErrQuotaExceeded    = errors.New("eligibility: daily quota exceeded")
	ErrAccessDisabled   = errors.New("eligibility: account access disabled")
)

// Task errors
var (
	ErrTaskNotFound     = errors.New("task: not found")
	ErrTaskInactive     = errors.New("task: inactive")
	ErrTaskCompleted    = errors.New("task: already completed")
	ErrTaskInvalidInput = errors.New("task: invalid input")
)

// Attempt errors
var (
	ErrAttemptNotFound     = errors.New("attempt: not found")
	ErrAttemptNotOwned     = errors.New("attempt: does not belong to user")
	ErrAttemptExpired      = errors.New("attempt: time limit exceeded")
	ErrAttemptsExhausted   = errors.New("attempt: max attempts exhausted")
	ErrAttemptNotActive    = errors.New("attempt: not in a submittable state")
	ErrAttemptTerminal     = errors.New("attempt: already decided")
)
