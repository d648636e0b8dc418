// Package handler exposes the feedback endpoint.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/feedback/repository"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	userdomain "echo-memory/backend/internal/user/domain"
)

// UserResolver resolves wire identifiers to user records.
type UserResolver interface {
	GetByUID(ctx context.Context, uid string) (*userdomain.User, error)
}

type Handler struct {
	repo  repository.Repository
	users UserResolver
}

func New(repo repository.Repository, users UserResolver) *Handler {
	return &Handler{repo: repo, users: users}
}

type submitRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Submit stores a rating with an optional comment.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Rating is required.")
		return
	}

	user, err := h.users.GetByUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save feedback.")
		return
	}
	if user == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	if err := h.repo.Create(c.Request.Context(), user.ID, req.Rating, req.Comment); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save feedback.")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": "Feedback received. Thank you!"})
}
