package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"gorm.io/gorm"
)

// PurposeLogin is the only challenge purpose this service issues today;
// password-reset would be a second one.
const PurposeLogin = "login"

// Mailer dispatches a verification code out of band. Satisfied by
// utils.EmailManager; tests swap in a capture stub.
type Mailer interface {
	SendLoginCode(to, code string) error
}

// GenerateCode returns a 6-digit code from crypto/rand.
func GenerateCode() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(1_000_000))
	return fmt.Sprintf("%06d", n.Int64())
}

// HashCode binds the code to its identifier before hashing, so a code issued
// for one email can never verify for another.
func HashCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

// OTPManager issues, verifies, and re-issues one-time codes. Codes are
// stored hashed; a new challenge retires any pending one for the same
// (email, purpose); a verified challenge is single-use.
type OTPManager struct {
	DB             *gorm.DB
	Mailer         Mailer
	CodeTTL        time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

func NewOTPManager(db *gorm.DB, mailer Mailer, codeTTL time.Duration, maxAttempts int, resendCooldown time.Duration) *OTPManager {
	return &OTPManager{
		DB:             db,
		Mailer:         mailer,
		CodeTTL:        codeTTL,
		MaxAttempts:    maxAttempts,
		ResendCooldown: resendCooldown,
	}
}

// Issue creates a fresh challenge and dispatches its code. Dispatch is
// synchronous: the caller only reports success to the client once the code
// has actually left, and a send failure comes back as ErrDelivery.
func (m *OTPManager) Issue(email, purpose string) error {
	code := GenerateCode()

	err := m.DB.Transaction(func(tx *gorm.DB) error {
		// At most one pending challenge per (email, purpose).
		if err := tx.Model(&models.OTPChallenge{}).
			Where("email = ? AND purpose = ? AND consumed = ?", email, purpose, false).
			Update("consumed", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTPChallenge{
			Email:     email,
			Purpose:   purpose,
			CodeHash:  HashCode(email, code),
			ExpiresAt: time.Now().Add(m.CodeTTL),
		}).Error
	})
	if err != nil {
		return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}

	if err := m.Mailer.SendLoginCode(email, code); err != nil {
		return &FailureError{Class: ErrDelivery, Reason: ReasonDeliveryFailure}
	}
	return nil
}

// Verify checks a submitted code against the challenge for (email, purpose).
// Absent, expired, and consumed challenges fail with the same generic class
// as a plain mismatch. A mismatch burns one attempt; once the budget is
// spent the challenge is retired outright. A match consumes the challenge
// through a guarded update, so even two racing verifies yield one winner.
func (m *OTPManager) Verify(email, purpose, code string) error {
	var ch models.OTPChallenge
	err := m.DB.Where("email = ? AND purpose = ? AND consumed = ?", email, purpose, false).
		Order("created_at DESC").
		First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &FailureError{Class: ErrAuthentication, Reason: ReasonNoChallenge}
		}
		return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}

	if ch.State(time.Now()) == models.ChallengeExpired {
		return &FailureError{Class: ErrAuthentication, Reason: ReasonCodeExpired}
	}

	if HashCode(email, code) != ch.CodeHash {
		if err := m.DB.Model(&ch).UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err == nil {
			m.DB.First(&ch, ch.ID)
			if ch.Attempts >= m.MaxAttempts {
				m.DB.Model(&ch).Update("consumed", true)
			}
		}
		return &FailureError{Class: ErrAuthentication, Reason: ReasonCodeMismatch}
	}

	res := m.DB.Model(&models.OTPChallenge{}).
		Where("id = ? AND consumed = ?", ch.ID, false).
		Update("consumed", true)
	if res.Error != nil {
		return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}
	if res.RowsAffected == 0 {
		return &FailureError{Class: ErrAuthentication, Reason: ReasonCodeConsumed}
	}
	return nil
}

// Resend issues a replacement code, gated by its own per-identifier cooldown
// measured from the latest challenge. The cooldown is independent of both
// the rate limiter and the lockout counters and never resets either.
func (m *OTPManager) Resend(email, purpose string) error {
	var last models.OTPChallenge
	err := m.DB.Where("email = ? AND purpose = ?", email, purpose).
		Order("created_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to re-issue; the caller answers generically so this
			// cannot be used to probe for pending logins.
			return &FailureError{Class: ErrAuthentication, Reason: ReasonNoChallenge}
		}
		return &FailureError{Class: ErrInternal, Reason: ReasonStoreFailure}
	}

	if wait := time.Until(last.CreatedAt.Add(m.ResendCooldown)); wait > 0 {
		return &RateLimitError{ResetAt: last.CreatedAt.Add(m.ResendCooldown)}
	}

	return m.Issue(email, purpose)
}
