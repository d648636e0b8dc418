// Package handler exposes the offline batch sync endpoint.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	"echo-memory/backend/internal/syncqueue/repository"
	userdomain "echo-memory/backend/internal/user/domain"
)

// UserResolver resolves wire identifiers to user records.
type UserResolver interface {
	GetByUID(ctx context.Context, uid string) (*userdomain.User, error)
}

type Handler struct {
	repo       repository.Repository
	users      UserResolver
	audit      *audit.Logger
	trustProxy bool
}

func New(repo repository.Repository, users UserResolver, auditLogger *audit.Logger, trustProxy bool) *Handler {
	return &Handler{repo: repo, users: users, audit: auditLogger, trustProxy: trustProxy}
}

type batchItem struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type syncRequest struct {
	DeviceID string      `json:"device_id"`
	Batch    []batchItem `json:"batch"`
}

// Sync stores a batch of offline changes for later processing. Items are
// accepted independently: one bad item does not fail the batch.
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = "unknown_device"
	}
	if len(req.Batch) == 0 {
		respond.Success(c, http.StatusOK, gin.H{"message": "Sync successful (empty batch)."})
		return
	}

	user, err := h.users.GetByUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Sync failed due to server error.")
		return
	}
	if user == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	results := gin.H{}
	success, failed := 0, 0
	var errs []string
	for i, item := range req.Batch {
		payloadType := item.Type
		if payloadType == "" {
			payloadType = "memory"
		}
		payload := string(item.Data)
		if payload == "" {
			payload = "null"
		}
		if err := h.repo.Enqueue(c.Request.Context(), user.ID, req.DeviceID, payloadType, payload); err != nil {
			failed++
			// Store errors stay in the server log; the client only learns
			// which item failed.
			slog.ErrorContext(c.Request.Context(), "sync item enqueue failed",
				"item", i, "type", payloadType, "device_id", req.DeviceID, "error", err)
			errs = append(errs, fmt.Sprintf("item %d failed", i))
			continue
		}
		success++
	}
	results["total"] = len(req.Batch)
	results["success"] = success
	results["failed"] = failed
	results["errors"] = errs

	h.audit.LogEvent(c.Request.Context(), "sync_completed",
		middleware.ClientIP(c.Request, h.trustProxy), c.Request.UserAgent(),
		map[string]any{"device_id": req.DeviceID, "success_count": success})

	respond.Success(c, http.StatusOK, gin.H{
		"message": "Sync batch processed.",
		"results": results,
	})
}
