package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/config"
	"github.com/agrodex/agrodex-backend/internal/db"
	"github.com/agrodex/agrodex-backend/internal/handlers"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/middleware"
	"github.com/agrodex/agrodex-backend/internal/observability"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/server"
	"github.com/agrodex/agrodex-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	cfg := config.Load(log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "agrodex",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	batchRepo := repos.NewBatchRepo(thePG, log)
	certificateRepo := repos.NewCertificateRepo(thePG, log)
	verificationRepo := repos.NewVerificationRepo(thePG, log)
	metadataBlobRepo := repos.NewMetadataBlobRepo(thePG, log)

	// Redis is optional: without it the public endpoint runs unthrottled.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	} else {
		log.Warn("REDIS_ADDR not set, verification rate limiting disabled")
	}

	// Clients
	log.Info("Setting up ledger and model clients from main...")
	ledger, err := hedera.NewClient(log, cfg)
	if err != nil {
		log.Error("Could not init Hedera client", "error", err)
		os.Exit(1)
	}
	ai := gemini.NewClient(log, cfg)

	// Services
	log.Info("Setting up Services from main...")
	verificationService := services.NewVerificationService(log, verificationRepo, certificateRepo, ledger, ai)
	registrationService := services.NewRegistrationService(log, batchRepo, ledger, ai)
	tokenizationService := services.NewTokenizationService(log, batchRepo, certificateRepo, verificationRepo, metadataBlobRepo, ledger, ai)
	narrativeService := services.NewNarrativeService(log, batchRepo, verificationRepo, ai)
	dashboardService := services.NewDashboardService(log, batchRepo, certificateRepo, verificationRepo, ledger, ai)
	healthService := services.NewHealthService(log, batchRepo, ledger, ai)

	// Handlers
	log.Info("Setting up handlers from main...")
	verifyHandler := handlers.NewVerifyHandler(log, verificationService)
	batchHandler := handlers.NewBatchHandler(log, registrationService, tokenizationService)
	aiHandler := handlers.NewAIHandler(log, narrativeService)
	dashboardHandler := handlers.NewDashboardHandler(log, dashboardService)
	healthHandler := handlers.NewHealthHandler(log, &cfg, healthService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey)
	rateLimit := middleware.NewRateLimitMiddleware(log, rdb, cfg.RateLimitPerMinute)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		VerifyHandler:    verifyHandler,
		BatchHandler:     batchHandler,
		AIHandler:        aiHandler,
		DashboardHandler: dashboardHandler,
		HealthHandler:    healthHandler,
		RootHandler:      handlers.Root(&cfg),
		AuthMiddleware:   authMiddleware,
		RateLimit:        rateLimit,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		fmt.Printf("Server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown failed", "error", err)
	}
	if err := ledger.Close(); err != nil {
		log.Warn("Ledger client close failed", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("Redis close failed", "error", err)
		}
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("Otel shutdown failed", "error", err)
		}
	}
}
