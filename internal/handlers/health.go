package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/config"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/services"
)

type HealthHandler struct {
	log    *logger.Logger
	cfg    *config.Config
	health services.HealthService
}

func NewHealthHandler(baseLog *logger.Logger, cfg *config.Config, health services.HealthService) *HealthHandler {
	return &HealthHandler{
		log:    baseLog.With("handler", "HealthHandler"),
		cfg:    cfg,
		health: health,
	}
}

// Ping handles GET /api/health/ping. No external dependencies, answers
// immediately.
func (hh *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"env":       hh.cfg.Environment,
		"port":      hh.cfg.Port,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DB handles GET /api/health/db.
func (hh *HealthHandler) DB(c *gin.Context) {
	out := hh.health.DB(c.Request.Context())
	c.JSON(out.Status, out.Body)
}

// Full handles GET /api/health/full.
func (hh *HealthHandler) Full(c *gin.Context) {
	out := hh.health.Full(c.Request.Context())
	c.JSON(out.Status, out.Body)
}
