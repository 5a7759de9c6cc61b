package services

import (
	"context"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
)

// requiredTables must exist for the service to be healthy.
var requiredTables = []string{"products", "content", "website_settings", "admin_users"}

// DBService handles database connectivity and health checking
type DBService struct {
	db          *database.DB
	cache       interfaces.CatalogCache
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDBService creates a new database service
func NewDBService(db *database.DB, cache interfaces.CatalogCache, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DBService {
	return &DBService{
		db:          db,
		cache:       cache,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// StatusReport is the payload of the database status endpoint.
type StatusReport struct {
	database.Status
	MissingTables []string                     `json:"missingTables,omitempty"`
	Cache         interfaces.CacheStats        `json:"cache"`
	Performance   performance.HealthStatus     `json:"performance"`
	Operations    []performance.OperationStats `json:"operations"`
	Uptime        string                       `json:"uptime"`
	Timestamp     time.Time                    `json:"timestamp"`
}

// CheckStatus performs basic database health check
func (d *DBService) CheckStatus(ctx context.Context) StatusReport {
	report := StatusReport{
		Status:      database.CheckStatus(ctx, d.db, d.logger),
		Cache:       d.cache.Stats(),
		Performance: d.perfTracker.Health(),
		Operations:  d.perfTracker.Stats(),
		Uptime:      d.perfTracker.Uptime().Round(time.Second).String(),
		Timestamp:   time.Now().UTC(),
	}
	if !report.Healthy {
		return report
	}

	for _, table := range requiredTables {
		var name string
		err := d.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			report.MissingTables = append(report.MissingTables, table)
		}
	}
	if len(report.MissingTables) > 0 {
		report.Healthy = false
		report.Error = "missing required tables"
		d.logger.Database().Error("Database status found missing tables", "tables", report.MissingTables)
	}
	return report
}
