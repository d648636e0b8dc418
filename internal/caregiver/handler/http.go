// Package handler exposes caregiver link requests and listing.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/caregiver/domain"
	"echo-memory/backend/internal/caregiver/repository"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	userdomain "echo-memory/backend/internal/user/domain"
)

// UserResolver resolves users by wire identifier and email.
type UserResolver interface {
	GetByUID(ctx context.Context, uid string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
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

type requestAccessRequest struct {
	PatientEmail string `json:"patient_email"`
}

// RequestAccess asks for read-only access to a patient's memories.
func (h *Handler) RequestAccess(c *gin.Context) {
	var req requestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}
	req.PatientEmail = strings.TrimSpace(strings.ToLower(req.PatientEmail))
	if req.PatientEmail == "" {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Patient email is required.")
		return
	}

	caregiver, err := h.users.GetByUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Request failed.")
		return
	}
	if caregiver == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	patient, err := h.users.GetByEmail(c.Request.Context(), req.PatientEmail)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Request failed.")
		return
	}
	if patient == nil || patient.ID == caregiver.ID {
		respond.Error(c, http.StatusNotFound, "not_found", "Patient not found.")
		return
	}

	if err := h.repo.RequestAccess(c.Request.Context(), caregiver.ID, patient.ID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Request failed.")
		return
	}

	h.audit.LogEvent(c.Request.Context(), "caregiver_request",
		middleware.ClientIP(c.Request, h.trustProxy), c.Request.UserAgent(),
		map[string]any{"caregiver_id": caregiver.ID, "patient_id": patient.ID})

	respond.Success(c, http.StatusOK, gin.H{
		"message": "Access request sent. Patient must approve in their panel.",
	})
}

// ListConnections returns both directions of the caller's caregiver links.
func (h *Handler) ListConnections(c *gin.Context) {
	user, err := h.users.GetByUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load connections.")
		return
	}
	if user == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	patients, err := h.repo.ListPatients(c.Request.Context(), user.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load connections.")
		return
	}
	caregivers, err := h.repo.ListCaregivers(c.Request.Context(), user.ID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load connections.")
		return
	}

	respond.Success(c, http.StatusOK, gin.H{
		"message":       "Connections retrieved.",
		"patients":      connectionList(patients),
		"my_caregivers": connectionList(caregivers),
	})
}

func connectionList(conns []*domain.Connection) []gin.H {
	out := make([]gin.H, 0, len(conns))
	for _, conn := range conns {
		out = append(out, gin.H{
			"full_name":    conn.FullName,
			"email":        conn.Email,
			"access_level": conn.AccessLevel,
			"is_verified":  conn.IsVerified,
		})
	}
	return out
}
