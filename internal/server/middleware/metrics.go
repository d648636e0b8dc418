package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// gateAuthRejectedKey marks a request RequireAuth turned away, so the
// auth-failure counter excludes 401s produced by handlers.
const gateAuthRejectedKey = "gate_auth_rejected"

// GateMetrics counts requests the gate turned away.
type GateMetrics struct {
	rateLimited  metric.Int64Counter
	authFailures metric.Int64Counter
}

// NewGateMetrics registers the gate counters on meter.
func NewGateMetrics(meter metric.Meter) (*GateMetrics, error) {
	rateLimited, err := meter.Int64Counter("gate.rate_limited",
		metric.WithDescription("Requests rejected by the rate limiter"))
	if err != nil {
		return nil, err
	}
	authFailures, err := meter.Int64Counter("gate.auth_failures",
		metric.WithDescription("Requests rejected by token validation"))
	if err != nil {
		return nil, err
	}
	return &GateMetrics{rateLimited: rateLimited, authFailures: authFailures}, nil
}

// Observe records gate rejections after the handler chain ran. Install it
// before RateLimit so it sees every response.
func Observe(m *GateMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		attrs := metric.WithAttributes(attribute.String("path", c.Request.URL.Path))
		switch c.Writer.Status() {
		case http.StatusTooManyRequests:
			m.rateLimited.Add(c.Request.Context(), 1, attrs)
		case http.StatusUnauthorized:
			if c.GetBool(gateAuthRejectedKey) {
				m.authFailures.Add(c.Request.Context(), 1, attrs)
			}
		}
	}
}
