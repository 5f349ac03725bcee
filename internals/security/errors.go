package security

import (
	"errors"
	"fmt"
	"time"
)

// Caller-facing error classes. Authentication failures are deliberately one
// generic sentinel: unknown email, wrong password, and a bad or expired OTP
// all read the same to the client. The precise cause goes only into the
// attempt log.
var (
	ErrAuthentication  = errors.New("invalid credentials or verification code")
	ErrInactiveAccount = errors.New("this account has been deactivated")
	ErrNotFound        = errors.New("record not found")
	ErrDelivery        = errors.New("failed to send verification code")
	ErrInternal        = errors.New("internal error")
)

// Audit reasons recorded with every denied or failed attempt.
const (
	ReasonRateLimited     = "rate limited"
	ReasonLockedOut       = "locked out"
	ReasonEmailNotFound   = "email not found"
	ReasonWrongPassword   = "wrong password"
	ReasonInactiveAccount = "inactive account"
	ReasonNoChallenge     = "no active challenge"
	ReasonCodeExpired     = "code expired"
	ReasonCodeMismatch    = "invalid code"
	ReasonCodeConsumed    = "challenge already consumed"
	ReasonCodeDispatched  = "verification code dispatched"
	ReasonLoginCompleted  = "login completed"
	ReasonStoreFailure    = "store failure"
	ReasonDeliveryFailure = "delivery failure"
)

// FailureError pairs the generic class returned to the caller with the
// precise reason destined for the attempt log. errors.Is sees the class via
// Unwrap, so handlers never need the reason to map a status code.
type FailureError struct {
	Class  error
	Reason string
}

func (e *FailureError) Error() string { return e.Class.Error() }

func (e *FailureError) Unwrap() error { return e.Class }

// Reason extracts the audit reason from an error chain, or falls back to the
// error text for errors raised outside this package.
func Reason(err error) string {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// RateLimitError tells the caller to back off without exposing the
// configured thresholds beyond what the response already implies.
type RateLimitError struct {
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.ResetAt.Format(time.RFC3339))
}

// LockoutError is the harsher blanket denial. It is distinct from
// RateLimitError so callers can log it separately, but both map to the same
// 429 class over HTTP.
type LockoutError struct {
	RetryAt time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("temporarily locked out, retry after %s", e.RetryAt.Format(time.RFC3339))
}

// ValidationError reports malformed input before any security decision runs.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}
