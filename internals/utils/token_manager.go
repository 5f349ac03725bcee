package utils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fannykaunang/kominfo-web-next-sub001/internals/config"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/models"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "Authorization"

// TokenManager mints the session bearer token and its cookie. The token is
// a signed JWT whose jti is the session id, but it is only a locator: every
// request is still re-checked against the SessionRegistry, which stores the
// token's hash and stays the single source of truth.
type TokenManager struct {
	// Registry is the authoritative session store backing every token
	Registry *security.SessionRegistry
	// CookieConfig holds the shared security baseline for all cookies issued by the server
	CookieConfig *config.CookieConfig
	// JWTSecret is the secret key used for signing tokens
	JWTSecret string
}

// NewTokenManager initializes and returns a new TokenManager instance
func NewTokenManager(registry *security.SessionRegistry, cookieConfig *config.CookieConfig, jwtSecret string) *TokenManager {
	return &TokenManager{
		Registry:     registry,
		CookieConfig: cookieConfig,
		JWTSecret:    jwtSecret,
	}
}

// IssueSession opens a registry session for the account and sets the signed
// token as a secure cookie. On a registry failure the cookie is cleared so
// the client is never left holding a half-valid token.
func (tm *TokenManager) IssueSession(c *gin.Context, acct *models.Account) (string, *models.Session, error) {
	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(tm.Registry.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": acct.ID,
		"jti": sessionID,
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(tm.JWTSecret))
	if err != nil {
		tm.ClearSessionCookie(c)
		return "", nil, fmt.Errorf("token generation failed: %w", err)
	}

	sess, err := tm.Registry.Create(sessionID, acct, security.HashToken(signed), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		tm.ClearSessionCookie(c)
		return "", nil, err
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, signed, maxAge, "/", tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)

	return signed, sess, nil
}

// ParseSessionToken validates the JWT signature and returns the session id
// plus the token's hash for the registry check.
func (tm *TokenManager) ParseSessionToken(tokenStr string) (sessionID string, tokenHash string, err error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", security.ErrAuthentication
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", security.ErrAuthentication
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return "", "", security.ErrAuthentication
	}

	return jti, security.HashToken(tokenStr), nil
}

// ClearSessionCookie removes the session cookie on logout, kick, or a failed
// issuance
func (tm *TokenManager) ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", tm.CookieConfig.Domain, tm.CookieConfig.IsSecure, tm.CookieConfig.HttpOnly)
}
