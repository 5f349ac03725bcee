package controllers

import (
	"net/http"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/utils"

	"github.com/gin-gonic/gin"
)

// SessionController covers the signed-in account's own session: the
// post-login validate probe and logout.
type SessionController struct {
	Registry     *security.SessionRegistry
	TokenManager *utils.TokenManager
}

func NewSessionController(registry *security.SessionRegistry, tokenManager *utils.TokenManager) *SessionController {
	return &SessionController{
		Registry:     registry,
		TokenManager: tokenManager,
	}
}

// currentAccount reads the account RequireAuth stored on the context.
func currentAccount(c *gin.Context) (models.Account, bool) {
	v, ok := c.Get("account")
	if !ok {
		return models.Account{}, false
	}
	acct, ok := v.(models.Account)
	return acct, ok
}

func adminEmail(c *gin.Context) string {
	if acct, ok := currentAccount(c); ok {
		return acct.Email
	}
	return "unknown"
}

// Validate lets the portal's post-login redirect confirm the session and
// fetch the signed-in account.
func (s *SessionController) Validate(c *gin.Context) {
	acct, ok := currentAccount(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "You are logged in",
		"account": gin.H{
			"id":    acct.ID,
			"email": acct.Email,
			"role":  acct.Role,
		},
	})
}

// Logout kicks the caller's own session and clears the cookie. The kick
// goes through the registry, so the token is dead everywhere at once.
func (s *SessionController) Logout(c *gin.Context) {
	v, ok := c.Get("session")
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "Already logged out"})
		return
	}
	sess := v.(*models.Session)

	if err := s.Registry.Kick(sess.ID, security.RevokeReasonLoggedOut); err != nil {
		c.JSON(statusFor(err), gin.H{"error": security.ErrInternal.Error()})
		return
	}

	s.TokenManager.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
