package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// StorefrontHandlers serve the public entry points.
type StorefrontHandlers struct {
	storefrontService *services.StorefrontService
	authService       *services.AuthService
	baseURL           string
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewStorefrontHandlers creates storefront handlers; baseURL prefixes share redirects.
func NewStorefrontHandlers(storefrontService *services.StorefrontService, authService *services.AuthService, baseURL string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StorefrontHandlers {
	return &StorefrontHandlers{
		storefrontService: storefrontService,
		authService:       authService,
		baseURL:           baseURL,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetRoot handles GET /. Anonymous viewers are sent to the configured
// redirect when one is set; everyone else gets the snapshot.
func (h *StorefrontHandlers) GetRoot(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_root_request", "")
	defer marker.Complete()

	authenticated := false
	if token := middleware.ExtractToken(c); token != "" {
		_, err := h.authService.ValidateToken(token)
		authenticated = err == nil
	}

	target, err := h.storefrontService.RedirectFor(c.Request.Context(), authenticated)
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}
	if target != "" {
		marker.SetSuccess(true)
		h.logger.Content().Debug("Redirecting anonymous viewer", "target", target)
		c.Redirect(http.StatusFound, target)
		return
	}

	h.writeSnapshot(c, marker)
}

// GetStorefront handles GET /api/v1/storefront?category=
func (h *StorefrontHandlers) GetStorefront(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_storefront_request", c.Query("category"))
	defer marker.Complete()
	h.writeSnapshot(c, marker)
}

func (h *StorefrontHandlers) writeSnapshot(c *gin.Context, marker *performance.Marker) {
	snapshot, err := h.storefrontService.Snapshot(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, h.logger.Content(), marker, err)
		return
	}
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for storefront snapshot", "duration", marker.Elapsed(),
		"featured", len(snapshot.Featured), "products", len(snapshot.Products))
	c.JSON(http.StatusOK, snapshot)
}

// GetShare handles GET /share?type=&id= by redirecting into the storefront.
func (h *StorefrontHandlers) GetShare(c *gin.Context) {
	target := catalog.ShareRedirect(h.baseURL, c.Query("type"), c.Query("id"))
	c.Redirect(http.StatusFound, target)
}
