package security

import (
	"fmt"
	"testing"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRegistry(db *gorm.DB) *SessionRegistry {
	return NewSessionRegistry(db, time.Hour, time.Hour)
}

func openSession(t *testing.T, r *SessionRegistry, acct *models.Account) (*models.Session, string) {
	t.Helper()
	token := uuid.New().String()
	sess, err := r.Create(uuid.New().String(), acct, HashToken(token), "1.2.3.4", "test-agent")
	require.NoError(t, err)
	return sess, HashToken(token)
}

func TestSessionCreateAndValidate(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := newRegistry(db)

	sess, hash := openSession(t, r, acct)

	got, err := r.Validate(sess.ID, hash)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.AccountID)

	_, err = r.Validate(sess.ID, HashToken("forged-token"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSessionKickIsImmediate(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := newRegistry(db)

	sess, hash := openSession(t, r, acct)
	require.NoError(t, r.Kick(sess.ID, "policy violation"))

	// The very next validation with the still-possessed token fails
	_, err := r.Validate(sess.ID, hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", sess.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "policy violation", stored.RevokeReason)
}

func TestSessionKickUnknownAndRepeated(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := newRegistry(db)

	err := r.Kick(uuid.New().String(), "whatever")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	sess, _ := openSession(t, r, acct)
	require.NoError(t, r.Kick(sess.ID, "first"))
	// Terminal states are forward-only; a second kick is a no-op and must
	// not overwrite the original reason
	require.NoError(t, r.Kick(sess.ID, "second"))

	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", sess.ID).Error)
	assert.Equal(t, "first", stored.RevokeReason)
}

func TestSessionExpiry(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := NewSessionRegistry(db, -time.Second, time.Hour)

	sess, hash := openSession(t, r, acct)
	_, err := r.Validate(sess.ID, hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSessionIdleTimeoutAndHeartbeat(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := NewSessionRegistry(db, time.Hour, 250*time.Millisecond)

	sess, hash := openSession(t, r, acct)

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, r.Heartbeat(sess.ID))
	time.Sleep(150 * time.Millisecond)

	// 300ms since login but only 150ms since the heartbeat
	_, err := r.Validate(sess.ID, hash)
	assert.NoError(t, err)

	time.Sleep(300 * time.Millisecond)
	_, err = r.Validate(sess.ID, hash)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestBanKicksAllSessionsAtomically(t *testing.T) {
	db := newTestDB(t)
	target := seedAccount(t, db, "target@portal.go.id", "pw", true)
	bystander := seedAccount(t, db, "other@portal.go.id", "pw", true)
	r := newRegistry(db)

	for i := 0; i < 3; i++ {
		openSession(t, r, target)
	}
	otherSess, otherHash := openSession(t, r, bystander)

	kicked, err := r.Ban(target.ID, "spam")
	require.NoError(t, err)
	assert.EqualValues(t, 3, kicked)

	var active int64
	require.NoError(t, db.Model(&models.Session{}).
		Where("account_id = ? AND is_active = ?", target.ID, true).
		Count(&active).Error)
	assert.Zero(t, active)

	var stored models.Account
	require.NoError(t, db.First(&stored, target.ID).Error)
	assert.False(t, stored.Active)

	// The bystander's session is untouched
	_, err = r.Validate(otherSess.ID, otherHash)
	assert.NoError(t, err)
}

func TestBanUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	r := newRegistry(db)

	_, err := r.Ban(9999, "spam")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionList(t *testing.T) {
	db := newTestDB(t)
	acct := seedAccount(t, db, "editor@portal.go.id", "pw", true)
	r := newRegistry(db)

	for i := 0; i < 4; i++ {
		openSession(t, r, acct)
	}
	sessions, err := r.List(3)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestSessionStatusDerivation(t *testing.T) {
	now := time.Now()
	idle := 30 * time.Minute

	cases := []struct {
		name string
		sess models.Session
		want string
	}{
		{"active", models.Session{IsActive: true, ExpiresAt: now.Add(time.Hour), LastActivityAt: now}, "active"},
		{"revoked", models.Session{IsActive: false, ExpiresAt: now.Add(time.Hour), LastActivityAt: now}, "revoked"},
		{"expired", models.Session{IsActive: true, ExpiresAt: now.Add(-time.Minute), LastActivityAt: now}, "expired"},
		{"idle", models.Session{IsActive: true, ExpiresAt: now.Add(time.Hour), LastActivityAt: now.Add(-time.Hour)}, "idle"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", i, tc.name), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sess.Status(now, idle))
		})
	}
}
