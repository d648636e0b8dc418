package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address for rate limiting and audit entries.
// Forwarding headers are only consulted when trustProxy is set, otherwise a
// client could spoof X-Forwarded-For to escape its rate limit bucket.
// Returns "unknown" when no address can be determined.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
			if i := strings.Index(s, ","); i > 0 {
				s = strings.TrimSpace(s[:i])
			}
			return s
		}
		if s := strings.TrimSpace(r.Header.Get("X-Real-Ip")); s != "" {
			return s
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
