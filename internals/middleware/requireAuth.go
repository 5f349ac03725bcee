package middleware

import (
	"net/http"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RequireAuthMiddleware struct {
	DB           *gorm.DB
	Registry     *security.SessionRegistry
	TokenManager *utils.TokenManager
}

func NewRequireAuthMiddleware(db *gorm.DB, registry *security.SessionRegistry, tokenManager *utils.TokenManager) *RequireAuthMiddleware {
	return &RequireAuthMiddleware{
		DB:           db,
		Registry:     registry,
		TokenManager: tokenManager,
	}
}

// RequireAuth authenticates a request. Possession of a validly signed token
// is only the entry ticket: the session registry is consulted on every
// request, so a kicked or banned session dies on its very next call even if
// the token itself is still within its lifetime.
func (m *RequireAuthMiddleware) RequireAuth(c *gin.Context) {
	tokenString, err := c.Cookie(utils.SessionCookieName)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sessionID, tokenHash, err := m.TokenManager.ParseSessionToken(tokenString)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sess, err := m.Registry.Validate(sessionID, tokenHash)
	if err != nil {
		m.TokenManager.ClearSessionCookie(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session is no longer valid"})
		return
	}

	// Keep the idle-timeout clock running
	if err := m.Registry.Heartbeat(sess.ID); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var acct models.Account
	if err := m.DB.First(&acct, sess.AccountID).Error; err != nil || !acct.Active {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session is no longer valid"})
		return
	}

	c.Set("account", acct)
	c.Set("session", sess)
	c.Next()
}

// RequireRole gates administrator endpoints. Must run after RequireAuth.
func (m *RequireAuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, ok := c.Get("account")
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if acct.(models.Account).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient privileges"})
			return
		}
		c.Next()
	}
}
