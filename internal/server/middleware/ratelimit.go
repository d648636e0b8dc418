package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/ratelimit"
	"echo-memory/backend/internal/server/respond"
)

// RateLimit rejects requests whose (client address, path) pair exceeded its
// window budget. Runs before auth so that token validation cannot be used to
// burn CPU on a flooding client.
func RateLimit(limiter *ratelimit.Limiter, window time.Duration, trustProxy bool) gin.HandlerFunc {
	retryAfter := strconv.FormatInt(int64(window/time.Second), 10)
	return func(c *gin.Context) {
		addr := ClientIP(c.Request, trustProxy)
		if limiter.CheckAndRecord(c.Request.Context(), addr, c.Request.URL.Path, time.Now()) {
			c.Header("Retry-After", retryAfter)
			respond.Error(c, http.StatusTooManyRequests, "rate_limited",
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
