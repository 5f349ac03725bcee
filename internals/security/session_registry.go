package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"gorm.io/gorm"
)

// Revoke reasons written when a session leaves the active state.
const (
	RevokeReasonLoggedOut = "logged out"
	RevokeReasonBanned    = "banned"
)

// HashToken hashes a bearer token for storage; the raw token never touches
// the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionRegistry is the authoritative record of live sessions. Validity is
// re-checked here on every request; nothing is ever trusted from the token
// alone. Sessions move forward only: once revoked or expired they never
// come back.
type SessionRegistry struct {
	DB          *gorm.DB
	TTL         time.Duration
	IdleTimeout time.Duration
}

func NewSessionRegistry(db *gorm.DB, ttl, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{DB: db, TTL: ttl, IdleTimeout: idleTimeout}
}

// Create opens a session after a successful second-factor verification.
func (r *SessionRegistry) Create(id string, acct *models.Account, tokenHash, ip, userAgent string) (*models.Session, error) {
	now := time.Now()
	sess := models.Session{
		ID:             id,
		AccountID:      acct.ID,
		TokenHash:      tokenHash,
		IPAddress:      ip,
		UserAgent:      userAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(r.TTL),
		IsActive:       true,
	}
	if err := r.DB.Create(&sess).Error; err != nil {
		return nil, &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}
	return &sess, nil
}

// Heartbeat bumps last_activity_at for the idle-timeout clock. Revoked
// sessions are left alone.
func (r *SessionRegistry) Heartbeat(id string) error {
	return r.DB.Model(&models.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("last_activity_at", time.Now()).Error
}

// Validate is the per-request source of truth. It loads the session row and
// accepts only an active, unexpired, non-idle session whose stored hash
// matches the presented token.
func (r *SessionRegistry) Validate(id, tokenHash string) (*models.Session, error) {
	var sess models.Session
	if err := r.DB.Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &FailureError{Class: ErrAuthentication, Reason: "unknown session"}
		}
		return nil, &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}

	now := time.Now()
	switch {
	case sess.TokenHash != tokenHash:
		return nil, &FailureError{Class: ErrAuthentication, Reason: "session token mismatch"}
	case !sess.IsActive:
		return nil, &FailureError{Class: ErrAuthentication, Reason: "session revoked: " + sess.RevokeReason}
	case now.After(sess.ExpiresAt):
		return nil, &FailureError{Class: ErrAuthentication, Reason: "session expired"}
	case now.Sub(sess.LastActivityAt) > r.IdleTimeout:
		return nil, &FailureError{Class: ErrAuthentication, Reason: "session idle timeout"}
	}
	return &sess, nil
}

// Kick revokes one session immediately. The update is guarded by
// is_active = true so a terminal session can never be touched twice; kicking
// an already-revoked session is a no-op, an unknown id is ErrNotFound.
func (r *SessionRegistry) Kick(id, reason string) error {
	res := r.DB.Model(&models.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{"is_active": false, "revoke_reason": reason})
	if res.Error != nil {
		return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.DB.Model(&models.Session{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
		}
		if count == 0 {
			return &FailureError{Class: ErrNotFound, Reason: "unknown session"}
		}
	}
	return nil
}

// Ban deactivates the account and kicks every one of its active sessions in
// a single transaction. There is no observable state where the account is
// inactive but a session still validates, or the reverse. Returns how many
// sessions were kicked.
func (r *SessionRegistry) Ban(accountID uint, reason string) (int64, error) {
	var kicked int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		kick := tx.Model(&models.Session{}).
			Where("account_id = ? AND is_active = ?", accountID, true).
			Updates(map[string]interface{}{"is_active": false, "revoke_reason": RevokeReasonBanned + ": " + reason})
		if kick.Error != nil {
			return kick.Error
		}
		kicked = kick.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &FailureError{Class: ErrNotFound, Reason: "unknown account"}
		}
		return 0, &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}
	return kicked, nil
}

// Get loads one session for the admin actions.
func (r *SessionRegistry) Get(id string) (*models.Session, error) {
	var sess models.Session
	if err := r.DB.Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &FailureError{Class: ErrNotFound, Reason: "unknown session"}
		}
		return nil, &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}
	return &sess, nil
}

// List returns the newest sessions for the admin stats view.
func (r *SessionRegistry) List(limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.DB.Order("login_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}
