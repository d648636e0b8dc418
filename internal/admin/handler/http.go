// Package handler exposes the admin dashboard endpoints.
package handler

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/admin/repository"
	auditdomain "echo-memory/backend/internal/audit/domain"
	"echo-memory/backend/internal/server/respond"
)

// recentAuditLimit caps the audit entries shown on the dashboard.
const recentAuditLimit = 10

// AuditReader is the slice of the audit repository the dashboard needs.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int32) ([]*auditdomain.Event, error)
	CountSecurityAlerts(ctx context.Context) (int64, error)
}

type Handler struct {
	stats repository.StatsRepository
	audit AuditReader
}

func New(stats repository.StatsRepository, audit AuditReader) *Handler {
	return &Handler{stats: stats, audit: audit}
}

// Stats returns the dashboard aggregates: user and memory counts, average
// confidence, security alert count, and the most recent audit entries.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalUsers, err := h.stats.CountUsers(ctx)
	if err != nil {
		h.fail(c)
		return
	}
	totalMemories, err := h.stats.CountProcessedMemories(ctx)
	if err != nil {
		h.fail(c)
		return
	}
	avgConfidence, err := h.stats.AvgConfidence(ctx)
	if err != nil {
		h.fail(c)
		return
	}
	alerts, err := h.audit.CountSecurityAlerts(ctx)
	if err != nil {
		h.fail(c)
		return
	}
	recent, err := h.audit.ListRecent(ctx, recentAuditLimit)
	if err != nil {
		h.fail(c)
		return
	}

	audits := make([]gin.H, 0, len(recent))
	for _, e := range recent {
		audits = append(audits, gin.H{
			"action":     e.Action,
			"ip_address": e.ActorAddr,
			"created_at": e.CreatedAt,
		})
	}

	respond.Success(c, http.StatusOK, gin.H{
		"message":         "Stats retrieved.",
		"total_users":     totalUsers,
		"total_memories":  totalMemories,
		"avg_confidence":  math.Round(avgConfidence*100) / 100,
		"security_alerts": alerts,
		"recent_audits":   audits,
	})
}

func (h *Handler) fail(c *gin.Context) {
	respond.Error(c, http.StatusInternalServerError, "internal", "Failed to fetch statistics.")
}
