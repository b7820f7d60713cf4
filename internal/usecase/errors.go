package usecase

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Expected outcomes are values, not panics; the delivery layer translates
// them to HTTP statuses. Anything outside this set is an internal fault and
// surfaces as a generic 500.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidMFACode      = errors.New("invalid mfa code")
	ErrMFAAlreadyEnabled   = errors.New("mfa is already enabled")
	ErrNoPendingMFASetup   = errors.New("no pending mfa setup")
	ErrMFANotEnabled       = errors.New("mfa is not enabled")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrPermissionDenied    = errors.New("insufficient permissions")
)

// ValidationError reports malformed input, detected before any state-mutating
// step runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AccountLockedError rejects a login attempt against a locked account. Only
// the remaining wait time is user-visible, never the attempt count.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes())
}

// RemainingMinutes returns the wait time rounded up to whole minutes.
func (e *AccountLockedError) RemainingMinutes() int {
	remaining := time.Until(e.Until)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Minutes()))
}
