// Package handler exposes the register, login, and logout endpoints.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"echo-memory/backend/internal/audit"
	"echo-memory/backend/internal/identity/service"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
)

type Handler struct {
	auth       *service.AuthService
	audit      *audit.Logger
	trustProxy bool
}

func New(auth *service.AuthService, auditLogger *audit.Logger, trustProxy bool) *Handler {
	return &Handler{auth: auth, audit: auditLogger, trustProxy: trustProxy}
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	LanguageCode string `json:"language_code"`
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}

	uid, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.LanguageCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			respond.Error(c, http.StatusBadRequest, "bad_request", argumentMessage(err))
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			respond.Error(c, http.StatusBadRequest, "email_registered", "Email already registered.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Registration failed due to server error.")
		}
		return
	}

	h.audit.LogEvent(c.Request.Context(), "user_registered", h.clientIP(c), c.Request.UserAgent(),
		map[string]any{"uid": uid, "email": strings.ToLower(strings.TrimSpace(req.Email))})

	respond.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful. You can now log in.",
		"uid":     uid,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a signed token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			respond.Error(c, http.StatusBadRequest, "bad_request", argumentMessage(err))
		case errors.Is(err, service.ErrInvalidCredentials):
			h.audit.LogEvent(c.Request.Context(), "login_failed", h.clientIP(c), c.Request.UserAgent(),
				map[string]any{"email": strings.ToLower(strings.TrimSpace(req.Email))})
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
		case errors.Is(err, service.ErrAccountSuspended):
			respond.Error(c, http.StatusForbidden, "suspended", "Account is suspended. Please contact support.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Login failed due to server error.")
		}
		return
	}

	h.audit.LogEvent(c.Request.Context(), "login_success", h.clientIP(c), c.Request.UserAgent(),
		map[string]any{"uid": result.User.UID})

	respond.Success(c, http.StatusOK, gin.H{
		"message": "Login successful.",
		"token":   result.Token,
		"user": gin.H{
			"uid":       result.User.UID,
			"full_name": result.User.FullName,
			"email":     result.User.Email,
			"lang":      result.User.LanguageCode,
		},
	})
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin authenticates an operator and returns a token carrying the
// admin flag.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid JSON payload.")
		return
	}

	result, err := h.auth.AdminLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			respond.Error(c, http.StatusBadRequest, "bad_request", argumentMessage(err))
		case errors.Is(err, service.ErrInvalidCredentials):
			h.audit.LogEvent(c.Request.Context(), "admin_login_failed", h.clientIP(c), c.Request.UserAgent(),
				map[string]any{"username": strings.TrimSpace(req.Username)})
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Login failed due to server error.")
		}
		return
	}

	h.audit.LogEvent(c.Request.Context(), "admin_login_success", h.clientIP(c), c.Request.UserAgent(),
		map[string]any{"username": result.Username})

	respond.Success(c, http.StatusOK, gin.H{
		"message": "Admin login successful.",
		"token":   result.Token,
		"user": gin.H{
			"username": result.Username,
			"role":     result.Role,
		},
	})
}

// Logout is stateless: tokens are not revocable, so this only records that
// the client ended its session.
func (h *Handler) Logout(c *gin.Context) {
	h.audit.LogEvent(c.Request.Context(), "logout", h.clientIP(c), c.Request.UserAgent(),
		map[string]any{"uid": middleware.UserID(c)})
	respond.Success(c, http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *Handler) clientIP(c *gin.Context) string {
	return middleware.ClientIP(c.Request, h.trustProxy)
}

// argumentMessage strips the sentinel prefix from a validation error so the
// client sees only the human readable part.
func argumentMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}
