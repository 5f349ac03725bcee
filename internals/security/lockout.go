package security

import "time"

// LockoutGuard is the escalation layer above the ordinary rate limiter. It
// reads the attempt log over a longer window and, once the failure threshold
// is crossed, denies every login from the IP for the rest of the window,
// correct password or not. It shares no counters with the RateLimiter or the
// OTP resend cooldown.
type LockoutGuard struct {
	Attempts    *AttemptLogger
	MaxFailures int
	Window      time.Duration
}

func NewLockoutGuard(attempts *AttemptLogger, maxFailures int, window time.Duration) *LockoutGuard {
	return &LockoutGuard{Attempts: attempts, MaxFailures: maxFailures, Window: window}
}

// IsLockedOut reports whether the IP has burned through its failure budget
// inside the window. On a store error it reports locked (fail closed).
func (g *LockoutGuard) IsLockedOut(ip string) (bool, error) {
	n, err := g.Attempts.FailureCount(ip, time.Now().Add(-g.Window))
	if err != nil {
		return true, err
	}
	return n >= int64(g.MaxFailures), nil
}

// RetryAt is the end of the current lockout window, used for the caller's
// back-off hint.
func (g *LockoutGuard) RetryAt() time.Time {
	return time.Now().Add(g.Window)
}
