// Package handler exposes the assistant chat and history endpoints.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/chat/service"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	userdomain "echo-memory/backend/internal/user/domain"
)

// UserResolver resolves wire identifiers to user records.
type UserResolver interface {
	GetByUID(ctx context.Context, uid string) (*userdomain.User, error)
}

type Handler struct {
	chat  *service.ChatService
	users UserResolver
}

func New(chat *service.ChatService, users UserResolver) *Handler {
	return &Handler{chat: chat, users: users}
}

type askRequest struct {
	Message string `json:"message"`
}

// Ask sends a message to the assistant and returns its reply.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Message is required.")
		return
	}

	user, ok := h.resolveUser(c)
	if !ok {
		return
	}

	reply, err := h.chat.Ask(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Chat failed due to server error.")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"reply": reply})
}

// History returns the caller's conversation in chronological order.
func (h *Handler) History(c *gin.Context) {
	user, ok := h.resolveUser(c)
	if !ok {
		return
	}

	messages, err := h.chat.History(c.Request.Context(), user.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load history.")
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		out = append(out, gin.H{
			"role":       m.Role,
			"content":    m.Content,
			"type":       m.Type,
			"media_path": m.MediaPath,
			"is_edited":  m.IsEdited,
			"created_at": m.CreatedAt,
		})
	}
	respond.Success(c, http.StatusOK, gin.H{"history": out})
}

func (h *Handler) resolveUser(c *gin.Context) (*userdomain.User, bool) {
	user, err := h.users.GetByUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Server error.")
		return nil, false
	}
	if user == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return nil, false
	}
	return user, true
}
