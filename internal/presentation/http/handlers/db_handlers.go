package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// DatabaseHandlers contains all database-related HTTP handlers
type DatabaseHandlers struct {
	dbService   *services.DBService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDBHandlers creates database handlers with injected dependencies
func NewDBHandlers(dbService *services.DBService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DatabaseHandlers {
	return &DatabaseHandlers{
		dbService:   dbService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetDatabaseStatus handles GET /api/v1/db/status. An unhealthy report is
// sent with 200 unless strict=true is set, which answers 503.
func (h *DatabaseHandlers) GetDatabaseStatus(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_database_status_request", "")
	defer marker.Complete()
	h.logger.System().Debug("Received get database status request", "method", c.Request.Method, "path", c.Request.URL.Path)

	report := h.dbService.CheckStatus(c.Request.Context())

	if !report.Healthy {
		h.logger.System().Error("Database status check failed", "error", report.Error, "duration", time.Since(start))
		marker.SetSuccess(false)
		status := http.StatusOK
		if c.Query("strict") == "true" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
		return
	}

	h.logger.System().Info("Database status check completed", "latency", report.Latency, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetDatabaseStatus request", "duration", marker.Elapsed(), "success", true)
	c.JSON(http.StatusOK, report)
}
