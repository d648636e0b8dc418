package middleware

import (
	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/security"
)

const claimsKey = "auth_claims"

// WithClaims stores the validated token claims on the request context.
// Handlers and downstream middleware read them via GetClaims and UserID.
func WithClaims(c *gin.Context, claims security.Claims) {
	c.Set(claimsKey, claims)
}

// GetClaims returns the claims set by the auth middleware and true if set.
func GetClaims(c *gin.Context) (security.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(security.Claims)
	return claims, ok
}

// UserID returns the authenticated subject from context, or "" if the
// request is unauthenticated.
func UserID(c *gin.Context) string {
	claims, ok := GetClaims(c)
	if !ok {
		return ""
	}
	return claims.Subject()
}
