// Package handler exposes the media upload endpoint.
package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/blob"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	userdomain "echo-memory/backend/internal/user/domain"
)

// allowedMimes maps an upload type to the MIME types accepted for it.
var allowedMimes = map[string]map[string]bool{
	"audio": {"audio/wav": true, "audio/mpeg": true, "audio/ogg": true, "audio/webm": true},
	"image": {"image/jpeg": true, "image/png": true},
	"video": {"video/mp4": true, "video/webm": true},
}

const (
	maxVideoBytes   = 50 << 20
	maxDefaultBytes = 10 << 20

	uploadSASExpiry = time.Hour
)

type Handler struct {
	signer     *blob.SASSigner // nil when blob storage is not configured
	audit      *audit.Logger
	trustProxy bool
}

func New(signer *blob.SASSigner, auditLogger *audit.Logger, trustProxy bool) *Handler {
	return &Handler{signer: signer, audit: auditLogger, trustProxy: trustProxy}
}

// Upload validates a media file and returns its storage path, plus a
// presigned upload URL when blob storage is configured.
func (h *Handler) Upload(c *gin.Context) {
	uid := middleware.UserID(c)

	file, err := c.FormFile("media")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "No media file provided.")
		return
	}
	uploadType := c.PostForm("type")
	if uploadType == "" {
		uploadType = "audio"
	}

	mimes, ok := allowedMimes[uploadType]
	contentType := file.Header.Get("Content-Type")
	if !ok || !mimes[contentType] {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid file type: "+contentType)
		return
	}

	maxSize := int64(maxDefaultBytes)
	if uploadType == "video" {
		maxSize = maxVideoBytes
	}
	if file.Size > maxSize {
		respond.Error(c, http.StatusBadRequest, "file_too_large", "File too large.")
		return
	}

	name, err := userdomain.NewUID()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Upload failed.")
		return
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	fileName := name
	if ext != "" {
		fileName = name + "." + ext
	}
	blobPath := fmt.Sprintf("users/%s/%s/%s", uid, uploadType, fileName)

	payload := gin.H{
		"message":       "Upload successful.",
		"file_path":     blobPath,
		"original_name": file.Filename,
	}
	if h.signer != nil {
		payload["upload_url"] = h.signer.BlobURL(blobPath, "w", uploadSASExpiry, time.Now())
	}

	h.audit.LogEvent(c.Request.Context(), "media_uploaded",
		middleware.ClientIP(c.Request, h.trustProxy), c.Request.UserAgent(),
		map[string]any{"uid": uid, "type": uploadType, "azure_path": blobPath})

	respond.Success(c, http.StatusOK, payload)
}
