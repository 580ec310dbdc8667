package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(baseLog *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:       baseLog.With("handler", "DashboardHandler"),
		dashboard: dashboard,
	}
}

// Stats handles GET /api/dashboard-stats.
func (dh *DashboardHandler) Stats(c *gin.Context) {
	out := dh.dashboard.Stats(c.Request.Context())
	c.JSON(out.Status, out.Body)
}

// Health handles GET /api/dashboard-health.
func (dh *DashboardHandler) Health(c *gin.Context) {
	out := dh.dashboard.Health(c.Request.Context())
	c.JSON(out.Status, out.Body)
}
