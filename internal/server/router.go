package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/agrodex/agrodex-backend/internal/handlers"
	"github.com/agrodex/agrodex-backend/internal/middleware"
)

type RouterConfig struct {
	VerifyHandler    *handlers.VerifyHandler
	BatchHandler     *handlers.BatchHandler
	AIHandler        *handlers.AIHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler
	RootHandler      gin.HandlerFunc
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimit        *middleware.RateLimitMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("agrodex"))

	// Buyers scan QR codes from arbitrary origins, so CORS stays open.
	// Preflight answers 200, not the middleware's default 204.
	router.Use(cors.New(cors.Config{
		AllowOrigins:              []string{"*"},
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Authorization", "Content-Type", "X-Requested-With"},
		OptionsResponseStatusCode: http.StatusOK,
	}))

	router.GET("/", cfg.RootHandler)

	api := router.Group("/api")
	{
		// Public: health probes and buyer verification.
		api.GET("/health/ping", cfg.HealthHandler.Ping)
		api.GET("/health/db", cfg.HealthHandler.DB)
		api.GET("/health/full", cfg.HealthHandler.Full)

		verify := api.Group("/")
		verify.Use(cfg.RateLimit.Limit())
		verify.POST("/verify-batch", cfg.VerifyHandler.Post)
		verify.GET("/verify-batch/:tokenId/:serialNumber", cfg.VerifyHandler.Get)

		// Protected: producer and operator surfaces.
		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protected.POST("/register-batch", cfg.BatchHandler.Register)
		protected.POST("/tokenize-batch", cfg.BatchHandler.Tokenize)
		protected.GET("/dashboard-stats", cfg.DashboardHandler.Stats)
		protected.GET("/dashboard-health", cfg.DashboardHandler.Health)

		ai := protected.Group("/ai")
		ai.POST("/analyze-image", cfg.AIHandler.AnalyzeImage)
		ai.POST("/summarize-provenance", cfg.AIHandler.SummarizeProvenance)
		ai.POST("/buyer-qa", cfg.AIHandler.BuyerQA)
		ai.POST("/translate-marketing", cfg.AIHandler.TranslateMarketing)
		ai.POST("/price-suggestion", cfg.AIHandler.PriceSuggestion)
	}

	return router
}
