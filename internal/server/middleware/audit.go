package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
)

// Audit records an audit event after each mutating authenticated request.
// Handlers that need a richer event (login_failed, sync_completed) write it
// themselves; this middleware covers the rest with a generic action derived
// from the route. skipPaths lists exact paths to never audit.
func Audit(logger *audit.Logger, trustProxy bool, skipPaths map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || skipPaths[c.Request.URL.Path] {
			return
		}
		uid := UserID(c)
		if uid == "" {
			return
		}
		logger.LogEvent(c.Request.Context(),
			actionFromRoute(c.Request.Method, c.FullPath()),
			ClientIP(c.Request, trustProxy),
			c.Request.UserAgent(),
			map[string]any{"uid": uid, "http_status": c.Writer.Status()})
	}
}

// actionFromRoute turns "POST /api/memories" into "memories_post".
func actionFromRoute(method, path string) string {
	p := strings.Trim(path, "/")
	p = strings.ReplaceAll(p, "/", "_")
	p = strings.ReplaceAll(p, ":", "")
	if p == "" {
		p = "root"
	}
	return p + "_" + strings.ToLower(method)
}
