package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/security"
	"echo-memory/backend/internal/server/respond"
)

const bearerPrefix = "bearer "

// RequireAuth validates the Bearer token from the Authorization header and
// stores its claims on the context. Missing, malformed, expired, and tampered
// tokens all produce the same 401 so callers cannot probe which check failed.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.Request.Header.Get("Authorization"))
		if token == "" {
			c.Set(gateAuthRejectedKey, true)
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			c.Set(gateAuthRejectedKey, true)
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		WithClaims(c, claims)
		c.Next()
	}
}

// RequireAdmin rejects authenticated requests whose claims do not carry the
// admin flag. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || !claims.IsAdmin() {
			respond.Error(c, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		c.Next()
	}
}

// extractBearer returns the Bearer token from an Authorization header value,
// or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
