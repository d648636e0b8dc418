package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	adminhandler "echo-memory/backend/internal/admin/handler"
	adminrepo "echo-memory/backend/internal/admin/repository"
	"echo-memory/backend/internal/audit"
	auditrepo "echo-memory/backend/internal/audit/repository"
	"echo-memory/backend/internal/blob"
	blobhandler "echo-memory/backend/internal/blob/handler"
	caregiverhandler "echo-memory/backend/internal/caregiver/handler"
	caregiverrepo "echo-memory/backend/internal/caregiver/repository"
	chathandler "echo-memory/backend/internal/chat/handler"
	chatrepo "echo-memory/backend/internal/chat/repository"
	chatservice "echo-memory/backend/internal/chat/service"
	"echo-memory/backend/internal/config"
	"echo-memory/backend/internal/db"
	feedbackhandler "echo-memory/backend/internal/feedback/handler"
	feedbackrepo "echo-memory/backend/internal/feedback/repository"
	healthhandler "echo-memory/backend/internal/health/handler"
	identityhandler "echo-memory/backend/internal/identity/handler"
	identityservice "echo-memory/backend/internal/identity/service"
	memoryhandler "echo-memory/backend/internal/memory/handler"
	memoryrepo "echo-memory/backend/internal/memory/repository"
	"echo-memory/backend/internal/ratelimit"
	ratelimitrepo "echo-memory/backend/internal/ratelimit/repository"
	"echo-memory/backend/internal/security"
	"echo-memory/backend/internal/server"
	"echo-memory/backend/internal/server/middleware"
	synchandler "echo-memory/backend/internal/syncqueue/handler"
	syncrepo "echo-memory/backend/internal/syncqueue/repository"
	"echo-memory/backend/internal/telemetry/otel"
	userhandler "echo-memory/backend/internal/user/handler"
	userrepo "echo-memory/backend/internal/user/repository"
)

// sweepInterval is how often stale rate-limit rows are deleted.
const sweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "echo-memory-backend", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	metrics, err := middleware.NewGateMetrics(providers.MeterProvider.Meter("echo-memory/backend/gate"))
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	tokens := security.NewTokenProvider(cfg.JWTSecret)
	hasher := security.NewHasher(cfg.Argon2MemoryKiB, cfg.Argon2Time, cfg.Argon2Parallelism)

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(pool), logger)
	limiter := ratelimit.New(
		ratelimitrepo.NewPostgresRepository(pool),
		cfg.RateLimitMaxRequests, cfg.RateLimitWindow(), cfg.RateLimitFailClosed, logger)

	users := userrepo.NewPostgresRepository(pool)
	admins := adminrepo.NewPostgresRepository(pool)
	memories := memoryrepo.NewPostgresRepository(pool)

	authService := identityservice.NewAuthService(users, admins, hasher, tokens,
		cfg.TokenTTL(), cfg.LoginMaxConcurrent)
	chatService := chatservice.NewChatService(
		chatrepo.NewPostgresRepository(pool), memories,
		chatservice.NewAzureCompleter(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.AzureOpenAIDeployment),
		cfg.AzureOpenAIDeployment, logger)

	var signer *blob.SASSigner
	if cfg.AzureStorageAccount != "" && cfg.AzureStorageKey != "" {
		signer, err = blob.NewSASSigner(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureContainerName)
		if err != nil {
			log.Fatalf("blob: %v", err)
		}
	}

	router := server.NewRouter(server.Deps{
		Config:     cfg,
		Limiter:    limiter,
		Tokens:     tokens,
		Audit:      auditLogger,
		Metrics:    metrics,
		Traces:     providers.TracerProvider,
		Identity:   identityhandler.New(authService, auditLogger, cfg.TrustProxy),
		Users:      userhandler.New(users, auditLogger, cfg.TrustProxy),
		Memories:   memoryhandler.New(memories, users, auditLogger, cfg.TrustProxy),
		Caregivers: caregiverhandler.New(caregiverrepo.NewPostgresRepository(pool), users, auditLogger, cfg.TrustProxy),
		Chat:       chathandler.New(chatService, users),
		Feedback:   feedbackhandler.New(feedbackrepo.NewPostgresRepository(pool), users),
		Sync:       synchandler.New(syncrepo.NewPostgresRepository(pool), users, auditLogger, cfg.TrustProxy),
		Upload:     blobhandler.New(signer, auditLogger, cfg.TrustProxy),
		Admin:      adminhandler.New(adminrepo.NewPostgresStatsRepository(pool), auditrepo.NewPostgresRepository(pool)),
		Health:     healthhandler.New(pool),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		limiter.RunSweeper(groupCtx, sweepInterval)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
	logger.Info("http server stopped")
}
