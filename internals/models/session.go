package models

import "time"

// Session lifecycle: created active, then exactly one forward transition to
// expired, kicked, or banned. A session is never reactivated; every update
// that revokes it is guarded by is_active = true.
type Session struct {
	ID             string    `gorm:"column:id;primaryKey"`
	AccountID      uint      `gorm:"column:account_id;index"`
	TokenHash      string    `gorm:"column:token_hash;uniqueIndex"`
	IPAddress      string    `gorm:"column:ip_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	LoginAt        time.Time `gorm:"column:login_at"`
	LastActivityAt time.Time `gorm:"column:last_activity_at"`
	ExpiresAt      time.Time `gorm:"column:expires_at;index"`
	IsActive       bool      `gorm:"column:is_active;default:true;index"`
	RevokeReason   string    `gorm:"column:revoke_reason"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Status derives the display state for the admin session listing.
func (s *Session) Status(now time.Time, idleTimeout time.Duration) string {
	switch {
	case !s.IsActive:
		return "revoked"
	case now.After(s.ExpiresAt):
		return "expired"
	case now.Sub(s.LastActivityAt) > idleTimeout:
		return "idle"
	default:
		return "active"
	}
}
