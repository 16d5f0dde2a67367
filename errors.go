package authkit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation indicates missing or empty credential input. The
	// caller corrects the input and retries immediately.
	ErrValidation = errors.New("username and password are required")
	// ErrRateLimited indicates too many attempts inside the current
	// window. Wrapped by [RateLimitError], which carries the wait.
	ErrRateLimited = errors.New("too many attempts, try again later")
	// ErrInvalidCredentials covers unknown username, wrong password,
	// and inactive account. The three are indistinguishable so the
	// response never reveals whether an account exists.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountLocked indicates the lockout threshold was reached.
	// Wrapped by [LockedError], which carries the unlock time.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrPersistence indicates the credential store or session slot
	// failed. The caller retries later or escalates.
	ErrPersistence = errors.New("storage unavailable")
	// ErrConfiguration indicates a required capability is missing at
	// build time. Fatal; not user-recoverable.
	ErrConfiguration = errors.New("authkit misconfigured")
	// ErrInternal is the generic boundary error for unexpected
	// failures. The underlying detail goes to the warn log and audit
	// stream, never to the caller.
	ErrInternal = errors.New("internal error")
)

// RateLimitError carries how long the caller must wait. Matches
// [ErrRateLimited] under errors.Is.
type RateLimitError struct {
	RetryAfterMinutes int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, try again in %d minute(s)", e.RetryAfterMinutes)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// LockedError carries the unlock timestamp. Matches
// [ErrAccountLocked] under errors.Is.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error {
	return ErrAccountLocked
}
