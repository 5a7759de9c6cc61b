package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// MediaHandlers accepts image swaps from the editor.
type MediaHandlers struct {
	mediaService *services.MediaService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

func NewMediaHandlers(mediaService *services.MediaService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MediaHandlers {
	return &MediaHandlers{mediaService: mediaService, logger: logger, perfTracker: perfTracker}
}

// PostImage stores a base64 data URL: {"data": "data:image/png;base64,..."}.
func (h *MediaHandlers) PostImage(c *gin.Context) {
	marker := h.perfTracker.StartOperation("upload_image_request", "")
	defer marker.Complete()

	var req struct {
		Data string `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, marker, err)
		return
	}

	stored, err := h.mediaService.Upload(req.Data)
	if err != nil {
		respondError(c, h.logger.Media(), marker, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostImage request", "duration", marker.Elapsed(), "thumbnails", len(stored.Thumbnails))
	c.JSON(http.StatusCreated, stored)
}
