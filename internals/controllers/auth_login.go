package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// AuthController runs the login pipeline: rate limiter, lockout guard,
// credential check, OTP challenge, session issuance. Every branch, allowed
// or denied, writes one attempt row.
type AuthController struct {
	DB            *gorm.DB
	Attempts      *security.AttemptLogger
	Limiter       *security.RateLimiter
	Lockout       *security.LockoutGuard
	Verifier      *security.CredentialVerifier
	OTP           *security.OTPManager
	TokenManager  *utils.TokenManager
	EncryptionKey string
}

func NewAuthController(db *gorm.DB, attempts *security.AttemptLogger, limiter *security.RateLimiter,
	lockout *security.LockoutGuard, verifier *security.CredentialVerifier, otp *security.OTPManager,
	tokenManager *utils.TokenManager, encryptionKey string) *AuthController {
	return &AuthController{
		DB:            db,
		Attempts:      attempts,
		Lockout:       lockout,
		Limiter:       limiter,
		Verifier:      verifier,
		OTP:           otp,
		TokenManager:  tokenManager,
		EncryptionKey: encryptionKey,
	}
}

type loginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyOTPBody struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type resendOTPBody struct {
	Email string `json:"email" binding:"required,email"`
}

// denied guards the front door: one rate-limiter hit plus the lockout check.
// It answers true after writing the attempt row and the 429 response.
func (a *AuthController) denied(c *gin.Context, email, ip, userAgent string) bool {
	rl, err := a.Limiter.Check(ip)
	if err != nil {
		// Fail closed: a limiter outage must not become a bypass
		a.Attempts.Record(email, ip, userAgent, false, security.ReasonStoreFailure)
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return true
	}
	if !rl.Allowed {
		a.Attempts.Record(email, ip, userAgent, false, security.ReasonRateLimited)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "Too many requests. Please slow down.",
			"reset_at": rl.ResetAt.Format(time.RFC3339),
		})
		return true
	}

	locked, err := a.Lockout.IsLockedOut(ip)
	if err != nil {
		a.Attempts.Record(email, ip, userAgent, false, security.ReasonStoreFailure)
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return true
	}
	if locked {
		a.Attempts.Record(email, ip, userAgent, false, security.ReasonLockedOut)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "Too many failed attempts. Login is temporarily disabled for this address.",
			"retry_at": a.Lockout.RetryAt().Format(time.RFC3339),
		})
		return true
	}
	return false
}

// LoginRequest is step one: password check, then an emailed one-time code.
// The 200 only goes out after the code has actually been dispatched.
func (a *AuthController) LoginRequest(c *gin.Context) {
	var body loginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and password are required"})
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	if a.denied(c, body.Email, ip, userAgent) {
		return
	}

	acct, err := a.Verifier.Verify(body.Email, body.Password)
	if err != nil {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.Reason(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if err := a.OTP.Issue(acct.Email, security.PurposeLogin); err != nil {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.Reason(err))
		c.JSON(statusFor(err), gin.H{"error": security.ErrDelivery.Error()})
		return
	}

	a.Attempts.Record(body.Email, ip, userAgent, true, security.ReasonCodeDispatched)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("A verification code has been sent to %s. It expires in %d minutes.",
			body.Email, int(a.OTP.CodeTTL.Minutes())),
		"email": body.Email,
	})
}

// VerifyOTP is step two: the emailed code (or a bound TOTP authenticator)
// completes the login and opens the session.
func (a *AuthController) VerifyOTP(c *gin.Context) {
	var body verifyOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email and 6-digit code are required"})
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	// The lockout guard covers the second factor too; bad codes recorded
	// below feed the same escalation.
	locked, err := a.Lockout.IsLockedOut(ip)
	if err != nil {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.ReasonStoreFailure)
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return
	}
	if locked {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.ReasonLockedOut)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "Too many failed attempts. Login is temporarily disabled for this address.",
			"retry_at": a.Lockout.RetryAt().Format(time.RFC3339),
		})
		return
	}

	var acct models.Account
	if err := a.DB.Where("email = ?", body.Email).First(&acct).Error; err != nil || !acct.Active {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.ReasonEmailNotFound)
		c.JSON(http.StatusUnauthorized, gin.H{"error": security.ErrAuthentication.Error()})
		return
	}

	if !a.verifySecondFactor(&acct, body.OTP) {
		if err := a.OTP.Verify(acct.Email, security.PurposeLogin, body.OTP); err != nil {
			a.Attempts.Record(body.Email, ip, userAgent, false, security.Reason(err))
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
	}

	token, sess, err := a.TokenManager.IssueSession(c, &acct)
	if err != nil {
		a.Attempts.Record(body.Email, ip, userAgent, false, security.ReasonStoreFailure)
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return
	}

	a.Attempts.Record(body.Email, ip, userAgent, true, security.ReasonLoginCompleted)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Logged in successfully",
		"access_token": token,
		"expires_at":   sess.ExpiresAt.Format(time.RFC3339),
	})
}

// verifySecondFactor accepts a TOTP code for accounts that bound an
// authenticator app; everyone else goes through the emailed challenge.
func (a *AuthController) verifySecondFactor(acct *models.Account, code string) bool {
	if !acct.TOTPEnabled || acct.TOTPSecret == "" {
		return false
	}
	secret, err := utils.Decrypt(acct.TOTPSecret, a.EncryptionKey)
	if err != nil {
		return false
	}
	return totp.Validate(code, secret)
}

// ResendOTP re-issues the pending challenge. The response is the same
// whether or not a login is actually pending, so the endpoint cannot be used
// to probe accounts; only the cooldown is reported honestly.
func (a *AuthController) ResendOTP(c *gin.Context) {
	var body resendOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	err := a.OTP.Resend(body.Email, security.PurposeLogin)
	var rl *security.RateLimitError
	switch {
	case err == nil:
		a.Attempts.Record(body.Email, ip, userAgent, true, security.ReasonCodeDispatched)
		c.JSON(http.StatusOK, gin.H{"message": "If a login is pending for this address, a new code has been sent."})
	case errors.Is(err, security.ErrAuthentication):
		a.Attempts.Record(body.Email, ip, userAgent, false, security.Reason(err))
		c.JSON(http.StatusOK, gin.H{"message": "If a login is pending for this address, a new code has been sent."})
	case errors.As(err, &rl):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "Please wait before requesting a new code",
			"reset_at": rl.ResetAt.Format(time.RFC3339),
		})
	default:
		a.Attempts.Record(body.Email, ip, userAgent, false, security.Reason(err))
		c.JSON(statusFor(err), gin.H{"error": security.ErrDelivery.Error()})
	}
}
