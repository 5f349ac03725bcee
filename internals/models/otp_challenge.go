package models

import (
	"time"

	"gorm.io/gorm"
)

// ChallengeState is the derived lifecycle state of an OTP challenge.
type ChallengeState int

const (
	ChallengePending ChallengeState = iota
	ChallengeConsumed
	ChallengeExpired
)

// OTPChallenge stores one issued verification code. Only the hash of the
// code is kept. At most one pending challenge exists per (email, purpose):
// issuing a new one marks any prior pending challenge consumed.
type OTPChallenge struct {
	gorm.Model
	Email     string    `gorm:"column:email;index"`
	Purpose   string    `gorm:"column:purpose;index"`
	CodeHash  string    `gorm:"column:code_hash"`
	Attempts  int       `gorm:"column:attempts;default:0"`
	Consumed  bool      `gorm:"column:consumed;default:false"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
}

// State reports the challenge's lifecycle state at the given instant.
// Consumed wins over Expired so a used challenge never reads as merely
// timed out.
func (c *OTPChallenge) State(now time.Time) ChallengeState {
	if c.Consumed {
		return ChallengeConsumed
	}
	if now.After(c.ExpiresAt) {
		return ChallengeExpired
	}
	return ChallengePending
}
