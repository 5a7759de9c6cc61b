// Package cleanup provides the background cache expiry worker
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

// Worker handles background cache cleanup operations
type Worker struct {
	cache  interfaces.CatalogCache
	config *Config
	logger *logging.ChanneledLogger
	now    func() time.Time
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache interfaces.CatalogCache, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cache:  cache,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs the cleanup loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started",
		"interval", w.config.CleanupInterval,
		"ttl", w.config.ContentCacheTTL)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce drops the whole cache when it has not been refreshed within the TTL.
// It reports whether anything was cleared.
func (w *Worker) RunOnce() bool {
	start := time.Now()
	age := w.now().Sub(w.cache.LastUpdated())
	if age <= w.config.ContentCacheTTL {
		w.logger.Cache().Debug("Cache cleanup found nothing to expire", "age", age)
		return false
	}

	before := w.cache.Stats()
	w.cache.InvalidateAll()
	w.logger.Cache().Info("Cache expired and cleared",
		"age", age,
		"products", before.Products,
		"contentItems", before.ContentItems,
		"duration", time.Since(start))
	return true
}
