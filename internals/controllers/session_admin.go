package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionAdminController exposes the administrator surface: the session
// listing for the stats view, kick, and ban.
type SessionAdminController struct {
	DB       *gorm.DB
	Registry *security.SessionRegistry
	Attempts *security.AttemptLogger
}

func NewSessionAdminController(db *gorm.DB, registry *security.SessionRegistry, attempts *security.AttemptLogger) *SessionAdminController {
	return &SessionAdminController{
		DB:       db,
		Registry: registry,
		Attempts: attempts,
	}
}

type sessionActionBody struct {
	Action string `json:"action" binding:"required,oneof=ban"`
	Reason string `json:"reason" binding:"required"`
}

type kickBody struct {
	Reason string `json:"reason" binding:"required"`
}

// List returns recent sessions with their derived status, plus the latest
// attempt-log entries, for the admin stats view.
func (s *SessionAdminController) List(c *gin.Context) {
	sessions, err := s.Registry.List(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return
	}

	now := time.Now()
	view := make([]gin.H, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		view = append(view, gin.H{
			"id":               sess.ID,
			"account_id":       sess.AccountID,
			"ip_address":       sess.IPAddress,
			"user_agent":       sess.UserAgent,
			"login_at":         sess.LoginAt.Format(time.RFC3339),
			"last_activity_at": sess.LastActivityAt.Format(time.RFC3339),
			"expires_at":       sess.ExpiresAt.Format(time.RFC3339),
			"status":           sess.Status(now, s.Registry.IdleTimeout),
			"revoke_reason":    sess.RevokeReason,
		})
	}

	attempts, err := s.Attempts.Recent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": security.ErrInternal.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": view, "recent_attempts": attempts})
}

// Kick revokes a single session; its next request is rejected.
func (s *SessionAdminController) Kick(c *gin.Context) {
	var body kickBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A kick reason is required"})
		return
	}

	id := c.Param("id")
	if err := s.Registry.Kick(id, body.Reason); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("session %s kicked by %s: %s", id, adminEmail(c), body.Reason)
	c.JSON(http.StatusOK, gin.H{"message": "Session revoked"})
}

// Action handles POST /sessions/:id — today the only action is "ban", which
// deactivates the owning account and kicks all of its sessions atomically.
func (s *SessionAdminController) Action(c *gin.Context) {
	var body sessionActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An action (ban) and reason are required"})
		return
	}

	sess, err := s.Registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	kicked, err := s.Registry.Ban(sess.AccountID, body.Reason)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	log.Printf("account %d banned by %s (%d sessions revoked): %s", sess.AccountID, adminEmail(c), kicked, body.Reason)
	c.JSON(http.StatusOK, gin.H{
		"message":          "Account banned and all its sessions revoked",
		"sessions_revoked": kicked,
	})
}
