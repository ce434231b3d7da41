package models

import "time"

// AttemptState tracks failed logins and the lockout window.
// Locked is true iff LockoutEndTime is set and in the future at the last check.
type AttemptState struct {
	FailedCount    int        `json:"failed_count"`
	Locked         bool       `json:"locked"`
	LockoutEndTime *time.Time `json:"lockout_end_time,omitempty"`
}

// LockoutStatus is the view of AttemptState served to the lock screen
type LockoutStatus struct {
	AttemptState
	AttemptsRemaining int `json:"attempts_remaining"`
	RemainingSeconds  int `json:"remaining_seconds"`
}
