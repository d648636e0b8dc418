// Package handler exposes memory creation and listing.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/memory/domain"
	"echo-memory/backend/internal/memory/repository"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
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

type entityRequest struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Relevance *float64 `json:"relevance"`
}

type createRequest struct {
	SourceType    string          `json:"source_type"`
	NarrativeText string          `json:"narrative_text"`
	AudioPath     string          `json:"audio_path"`
	MediaPath     string          `json:"media_path"`
	MemoryDate    string          `json:"memory_date"`
	LanguageCode  string          `json:"language_code"`
	Entities      []entityRequest `json:"entities"`
}

// Create stores a new memory, with optional pre-extracted entities.
func (h *Handler) Create(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	ownerUID := claims.Subject()

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}

	owner, err := h.users.GetByUID(c.Request.Context(), ownerUID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save memory.")
		return
	}
	if owner == nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "User context invalid.")
		return
	}

	source := domain.SourceType(req.SourceType)
	if req.SourceType == "" {
		source = domain.SourceVoice
	}
	if !source.Valid() {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid source type.")
		return
	}
	memoryDate := req.MemoryDate
	if memoryDate == "" {
		memoryDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", memoryDate); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid memory date.")
		return
	}
	language := req.LanguageCode
	if language == "" {
		language = claims.String("lang")
	}

	uid, err := userdomain.NewUID()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save memory.")
		return
	}
	m := &domain.Memory{
		UID:           uid,
		UserID:        owner.ID,
		LanguageCode:  language,
		SourceType:    source,
		NarrativeText: req.NarrativeText,
		AudioPath:     req.AudioPath,
		MediaPath:     req.MediaPath,
		MemoryDate:    memoryDate,
		CreatedAt:     time.Now().UTC(),
	}
	entities := make([]domain.Entity, 0, len(req.Entities))
	for _, e := range req.Entities {
		relevance := 1.0
		if e.Relevance != nil {
			relevance = *e.Relevance
		}
		entities = append(entities, domain.Entity{Type: e.Type, Name: e.Name, Relevance: relevance})
	}

	if err := h.repo.Create(c.Request.Context(), m, entities); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save memory.")
		return
	}

	h.audit.LogEvent(c.Request.Context(), "memory_created",
		middleware.ClientIP(c.Request, h.trustProxy), c.Request.UserAgent(),
		map[string]any{"memory_id": m.ID, "uid": m.UID})

	respond.Success(c, http.StatusCreated, gin.H{
		"message": "Memory saved successfully.",
		"uid":     m.UID,
	})
}

// List returns the caller's memories, newest first, with a confidence
// indicator attached to each.
func (h *Handler) List(c *gin.Context) {
	memories, err := h.repo.ListByOwnerUID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load memories.")
		return
	}

	out := make([]gin.H, 0, len(memories))
	for _, m := range memories {
		out = append(out, gin.H{
			"uid":                  m.UID,
			"full_name":            m.OwnerName,
			"language_code":        m.LanguageCode,
			"source_type":          string(m.SourceType),
			"narrative_text":       m.NarrativeText,
			"audio_path":           m.AudioPath,
			"media_path":           m.MediaPath,
			"memory_date":          m.MemoryDate,
			"confidence_score":     m.ConfidenceScore,
			"confidence_indicator": domain.ConfidenceLabel(m.ConfidenceScore),
			"created_at":           m.CreatedAt,
		})
	}
	respond.Success(c, http.StatusOK, gin.H{
		"message":  "Memories retrieved.",
		"memories": out,
	})
}
