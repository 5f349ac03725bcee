package security

import (
	"testing"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutAfterMaxFailures(t *testing.T) {
	db := newTestDB(t)
	attempts := NewAttemptLogger(db)
	guard := NewLockoutGuard(attempts, 5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonWrongPassword)
	}
	locked, err := guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, locked, "four failures stay under the threshold")

	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonWrongPassword)
	locked, err = guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, locked, "the fifth failure trips the lockout")
}

func TestLockoutIsPerIP(t *testing.T) {
	db := newTestDB(t)
	attempts := NewAttemptLogger(db)
	guard := NewLockoutGuard(attempts, 2, 15*time.Minute)

	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonWrongPassword)
	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonEmailNotFound)

	locked, err := guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = guard.IsLockedOut("5.6.7.8")
	require.NoError(t, err)
	assert.False(t, locked)
}

// Denial rows and successes are not evidence: only real failed attempts
// count, so a locked-out IP hammering the endpoint does not extend its own
// cool-down.
func TestLockoutIgnoresDenialAndSuccessRows(t *testing.T) {
	db := newTestDB(t)
	attempts := NewAttemptLogger(db)
	guard := NewLockoutGuard(attempts, 3, 15*time.Minute)

	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonRateLimited)
	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonLockedOut)
	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonLockedOut)
	attempts.Record("a@b.com", "1.2.3.4", "test-agent", true, ReasonLoginCompleted)

	locked, err := guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockoutExpiresWithWindow(t *testing.T) {
	db := newTestDB(t)
	attempts := NewAttemptLogger(db)
	guard := NewLockoutGuard(attempts, 2, 15*time.Minute)

	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonWrongPassword)
	attempts.Record("a@b.com", "1.2.3.4", "test-agent", false, ReasonWrongPassword)

	locked, err := guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	require.True(t, locked)

	// Age the failures out of the window
	old := time.Now().Add(-16 * time.Minute)
	require.NoError(t, db.Model(&models.LoginAttempt{}).
		Where("ip_address = ?", "1.2.3.4").
		Update("created_at", old).Error)

	locked, err = guard.IsLockedOut("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, locked)
}
