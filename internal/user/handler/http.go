// Package handler exposes the profile and accessibility settings endpoints.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	"echo-memory/backend/internal/user/domain"
	"echo-memory/backend/internal/user/repository"
)

type Handler struct {
	repo       repository.Repository
	audit      *audit.Logger
	trustProxy bool
}

func New(repo repository.Repository, auditLogger *audit.Logger, trustProxy bool) *Handler {
	return &Handler{repo: repo, audit: auditLogger, trustProxy: trustProxy}
}

// GetProfile returns the caller's profile from their token claims.
func (h *Handler) GetProfile(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"message": "Profile retrieved.",
		"user": gin.H{
			"uid":       claims.Subject(),
			"full_name": claims.String("name"),
			"email":     claims.String("email"),
			"lang":      claims.String("lang"),
		},
	})
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UpdateProfile changes the caller's full name and email.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid := middleware.UserID(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Name and email are required.")
		return
	}
	if !domain.ValidEmail(req.Email) {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid email format.")
		return
	}

	taken, err := h.repo.EmailTakenByOther(c.Request.Context(), req.Email, uid)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Update failed due to server error.")
		return
	}
	if taken {
		respond.Error(c, http.StatusConflict, "email_taken", "Email is already in use by another account.")
		return
	}

	if err := h.repo.UpdateProfile(c.Request.Context(), uid, req.FullName, req.Email); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Update failed due to server error.")
		return
	}

	h.audit.LogEvent(c.Request.Context(), "profile_updated",
		middleware.ClientIP(c.Request, h.trustProxy), c.Request.UserAgent(),
		map[string]any{"uid": uid})

	respond.Success(c, http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user": gin.H{
			"uid":       uid,
			"full_name": req.FullName,
			"email":     req.Email,
		},
	})
}

// GetSettings returns the caller's stored accessibility preferences, or the
// defaults when none were saved yet.
func (h *Handler) GetSettings(c *gin.Context) {
	uid := middleware.UserID(c)

	u, err := h.repo.GetByUID(c.Request.Context(), uid)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load settings.")
		return
	}
	if u == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	settings := defaultSettings()
	if u.UISettings != "" {
		var stored map[string]any
		if err := json.Unmarshal([]byte(u.UISettings), &stored); err == nil {
			settings = stored
		}
	}
	respond.Success(c, http.StatusOK, gin.H{
		"message":  "Settings retrieved.",
		"settings": settings,
	})
}

// UpdateSettings stores the caller's accessibility preferences verbatim.
func (h *Handler) UpdateSettings(c *gin.Context) {
	uid := middleware.UserID(c)

	var settings map[string]any
	if err := c.ShouldBindJSON(&settings); err != nil || len(settings) == 0 {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid settings payload.")
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid settings payload.")
		return
	}

	if err := h.repo.UpdateSettings(c.Request.Context(), uid, string(raw)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save settings.")
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"message":  "Settings synchronized.",
		"settings": settings,
	})
}

func defaultSettings() map[string]any {
	return map[string]any{
		"theme":        "light",
		"font_size":    "large",
		"voice_only":   false,
		"last_updated": time.Now().Unix(),
	}
}
