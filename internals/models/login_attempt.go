package models

import "gorm.io/gorm"

// LoginAttempt is one row of the append-only audit trail. Rows are created
// once per login decision and never updated; CreatedAt (from gorm.Model) is
// the attempt timestamp the lockout window is measured against.
type LoginAttempt struct {
	gorm.Model
	Email         string `gorm:"column:email;index"`
	IPAddress     string `gorm:"column:ip_address;index"`
	UserAgent     string `gorm:"column:user_agent"`
	Success       bool   `gorm:"column:success"`
	FailureReason string `gorm:"column:failure_reason"`
}
