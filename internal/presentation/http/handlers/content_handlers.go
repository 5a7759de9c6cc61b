package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ContentHandlers serves the editable landing page entries and the
// website settings singleton.
type ContentHandlers struct {
	contentService  *services.ContentService
	settingsService *services.SettingsService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewContentHandlers creates content handlers with injected dependencies
func NewContentHandlers(contentService *services.ContentService, settingsService *services.SettingsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContentHandlers {
	return &ContentHandlers{
		contentService:  contentService,
		settingsService: settingsService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetContent returns the stored rows; clients overlay them on their defaults.
func (h *ContentHandlers) GetContent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_content_request", "")
	defer marker.Complete()

	items, err := h.contentService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"content": items, "count": len(items)})
}

// PutContent upserts the value under :key.
func (h *ContentHandlers) PutContent(c *gin.Context) {
	key := c.Param("key")
	marker := h.perfTracker.StartOperation("put_content_request", key)
	defer marker.Complete()

	var req struct {
		Value *string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, marker, err)
		return
	}

	item, err := h.contentService.Upsert(c.Request.Context(), key, *req.Value)
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PutContent request", "duration", marker.Elapsed(), "key", key)
	c.JSON(http.StatusOK, item)
}

// GetSettings returns the singleton, or null when never saved.
func (h *ContentHandlers) GetSettings(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_settings_request", "")
	defer marker.Complete()

	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// PutSettings inserts or updates the singleton.
func (h *ContentHandlers) PutSettings(c *gin.Context) {
	marker := h.perfTracker.StartOperation("put_settings_request", "")
	defer marker.Complete()

	var patch catalog.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, marker, err)
		return
	}

	settings, err := h.settingsService.Save(c.Request.Context(), patch)
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
