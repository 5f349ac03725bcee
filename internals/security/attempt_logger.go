package security

import (
	"log"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"gorm.io/gorm"
)

// AttemptLogger is the append-only audit trail. Every login decision writes
// exactly one row here, success or not; the LockoutGuard reads it back and
// the admin stats view lists it.
type AttemptLogger struct {
	DB *gorm.DB
}

func NewAttemptLogger(db *gorm.DB) *AttemptLogger {
	return &AttemptLogger{DB: db}
}

// Record appends one attempt row. A failed insert must never block the login
// decision that triggered it, so the error is logged and swallowed.
func (l *AttemptLogger) Record(email, ip, userAgent string, success bool, reason string) {
	attempt := models.LoginAttempt{
		Email:         email,
		IPAddress:     ip,
		UserAgent:     userAgent,
		Success:       success,
		FailureReason: reason,
	}
	if err := l.DB.Create(&attempt).Error; err != nil {
		log.Printf("attempt log write failed for %s: %v", ip, err)
	}
}

// FailureCount counts genuine failed attempts from an IP since the cutoff.
// Rows recording a rate-limit or lockout denial are excluded: a denied
// request is not new evidence against the IP, and counting denials would
// turn the fixed cool-down into an ever-sliding one.
func (l *AttemptLogger) FailureCount(ip string, since time.Time) (int64, error) {
	var n int64
	err := l.DB.Model(&models.LoginAttempt{}).
		Where("ip_address = ? AND success = ? AND created_at > ?", ip, false, since).
		Where("failure_reason NOT IN ?", []string{ReasonRateLimited, ReasonLockedOut}).
		Count(&n).Error
	return n, err
}

// Recent returns the newest attempts for the audit view.
func (l *AttemptLogger) Recent(limit int) ([]models.LoginAttempt, error) {
	var attempts []models.LoginAttempt
	err := l.DB.Order("created_at DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}
