// Package server assembles the HTTP surface: middleware chain and routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	adminhandler "echo-memory/backend/internal/admin/handler"
	"echo-memory/backend/internal/audit"
	blobhandler "echo-memory/backend/internal/blob/handler"
	caregiverhandler "echo-memory/backend/internal/caregiver/handler"
	chathandler "echo-memory/backend/internal/chat/handler"
	"echo-memory/backend/internal/config"
	feedbackhandler "echo-memory/backend/internal/feedback/handler"
	healthhandler "echo-memory/backend/internal/health/handler"
	identityhandler "echo-memory/backend/internal/identity/handler"
	memoryhandler "echo-memory/backend/internal/memory/handler"
	"echo-memory/backend/internal/ratelimit"
	"echo-memory/backend/internal/security"
	"echo-memory/backend/internal/server/middleware"
	"echo-memory/backend/internal/server/respond"
	synchandler "echo-memory/backend/internal/syncqueue/handler"
	userhandler "echo-memory/backend/internal/user/handler"
)

// Deps carries everything the router needs. All fields are required except
// Metrics and Traces, which may be nil when telemetry is disabled.
type Deps struct {
	Config  *config.Config
	Limiter *ratelimit.Limiter
	Tokens  *security.TokenProvider
	Audit   *audit.Logger
	Metrics *middleware.GateMetrics
	Traces  trace.TracerProvider

	Identity   *identityhandler.Handler
	Users      *userhandler.Handler
	Memories   *memoryhandler.Handler
	Caregivers *caregiverhandler.Handler
	Chat       *chathandler.Handler
	Feedback   *feedbackhandler.Handler
	Sync       *synchandler.Handler
	Upload     *blobhandler.Handler
	Admin      *adminhandler.Handler
	Health     *healthhandler.Handler
}

// selfAuditedPaths lists routes whose handlers write their own named audit
// events; the generic audit middleware must not double-log them.
var selfAuditedPaths = map[string]bool{
	"/api/register":     true,
	"/api/login":        true,
	"/api/admin/login":  true,
	"/api/logout":       true,
	"/api/profile":      true,
	"/api/memories":     true,
	"/api/caregivers":   true,
	"/api/sync":         true,
	"/api/upload":       true,
	"/api/health":       true,
	"/api/health/ready": true,
}

// NewRouter builds the gin engine. The gate order is fixed: trace and metrics
// observers, rate limiting, then per-group auth; rate limiting must reject a
// flooding client before any token signature work happens.
func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")
	})
	router.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Endpoint not found.")
	})
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(corsConfig()))

	if d.Traces != nil {
		router.Use(middleware.Trace(d.Traces))
	}
	if d.Metrics != nil {
		router.Use(middleware.Observe(d.Metrics))
	}
	router.Use(middleware.RateLimit(d.Limiter, d.Config.RateLimitWindow(), d.Config.TrustProxy))
	router.Use(middleware.Audit(d.Audit, d.Config.TrustProxy, selfAuditedPaths))

	api := router.Group("/api")

	// Public endpoints.
	api.GET("/health", d.Health.Live)
	api.GET("/health/ready", d.Health.Ready)
	api.POST("/register", d.Identity.Register)
	api.POST("/login", d.Identity.Login)
	api.POST("/admin/login", d.Identity.AdminLogin)

	// Endpoints requiring a valid token.
	authed := api.Group("")
	authed.Use(middleware.RequireAuth(d.Tokens))
	{
		authed.POST("/logout", d.Identity.Logout)
		authed.GET("/profile", d.Users.GetProfile)
		authed.POST("/profile", d.Users.UpdateProfile)
		authed.GET("/settings", d.Users.GetSettings)
		authed.POST("/settings", d.Users.UpdateSettings)
		authed.GET("/memories", d.Memories.List)
		authed.POST("/memories", d.Memories.Create)
		authed.GET("/caregivers", d.Caregivers.ListConnections)
		authed.POST("/caregivers", d.Caregivers.RequestAccess)
		authed.POST("/chat", d.Chat.Ask)
		authed.GET("/history", d.Chat.History)
		authed.POST("/feedback", d.Feedback.Submit)
		authed.POST("/sync", d.Sync.Sync)
		authed.POST("/upload", d.Upload.Upload)
	}

	// Endpoints requiring the admin flag on top of a valid token.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(d.Tokens), middleware.RequireAdmin())
	{
		admin.GET("/stats", d.Admin.Stats)
	}

	return router
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
