package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("system is locked out")

	// Persistence errors
	ErrPersistenceCorrupt = errors.New("persisted value is corrupt")
)

// InvalidCredentialsError reports a failed login and how many attempts are left
// before the lockout arms. It matches ErrInvalidCredentials with errors.Is.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials: %d attempts remaining", e.AttemptsRemaining)
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// LockedOutError reports that logins are rejected until Until.
// It matches ErrLockedOut with errors.Is.
type LockedOutError struct {
	Until time.Time
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("system is locked out until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *LockedOutError) Is(target error) bool {
	return target == ErrLockedOut
}

// Remaining returns how long the lockout still has to run relative to now.
func (e *LockedOutError) Remaining(now time.Time) time.Duration {
	if d := e.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}
