// Package handler implements liveness and readiness for load balancers and CI.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/server/respond"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db Pinger
}

func New(db Pinger) *Handler {
	return &Handler{db: db}
}

// Live always succeeds while the process is up.
func (h *Handler) Live(c *gin.Context) {
	respond.Success(c, http.StatusOK, gin.H{"message": "ok"})
}

// Ready succeeds only when the database answers a ping.
func (h *Handler) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "not_ready", "Database unavailable.")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": "ready"})
}
