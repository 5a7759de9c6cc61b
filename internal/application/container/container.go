// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/content"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/user"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
)

// Options override the pieces tests usually need to swap.
type Options struct {
	Mailer   email.Service
	MediaDir string
	Auth     *services.AuthConfig
}

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Content Services
	CatalogService    *services.CatalogService
	ImportService     *services.ImportService
	ContentService    *services.ContentService
	SettingsService   *services.SettingsService
	StorefrontService *services.StorefrontService
	MediaService      *services.MediaService

	// System Services
	AuthService *services.AuthService
	DBService   *services.DBService

	// Infrastructure Dependencies
	DB          *database.DB
	Cache       *stores.CatalogStore
	Feed        *messaging.ChangeFeed
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, logger *logging.ChanneledLogger, opts Options) *Container {
	cache := stores.NewCatalogStore()
	feed := messaging.NewChangeFeed(config.RealtimeSubscriberBuffer, logger)
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	mailer := opts.Mailer
	if mailer == nil {
		mailer = email.NewService(logger)
	}
	mediaDir := opts.MediaDir
	if mediaDir == "" {
		mediaDir = config.MediaDir
	}
	authConfig := services.AuthConfig{
		JWTSecret:     config.JWTSecret,
		TokenTTL:      config.JWTTTL,
		PublicBaseURL: config.PublicBaseURL,
		AllowSignup:   config.AllowSignup,
	}
	if opts.Auth != nil {
		authConfig = *opts.Auth
	}

	productRepo := content.NewProductRepository(db.DB, cache, feed, logger)
	contentRepo := content.NewContentRepository(db.DB, cache, feed, logger)
	settingsRepo := content.NewSettingsRepository(db.DB, cache, feed, logger)
	adminRepo := user.NewSQLAdminRepository(db.DB, logger)

	catalogService := services.NewCatalogService(productRepo, logger)
	contentService := services.NewContentService(contentRepo, logger)
	settingsService := services.NewSettingsService(settingsRepo, logger)

	return &Container{
		CatalogService:    catalogService,
		ImportService:     services.NewImportService(catalogService, logger),
		ContentService:    contentService,
		SettingsService:   settingsService,
		StorefrontService: services.NewStorefrontService(catalogService, contentService, settingsService),
		MediaService:      services.NewMediaService(media.NewImageProcessor(mediaDir, logger), logger),

		AuthService: services.NewAuthService(adminRepo, mailer, authConfig, logger),
		DBService:   services.NewDBService(db, cache, logger, perfTracker),

		DB:          db,
		Cache:       cache,
		Feed:        feed,
		Logger:      logger,
		PerfTracker: perfTracker,
	}
}

// Close stops the change feed. The database is owned by the caller.
func (c *Container) Close() {
	c.Feed.Shutdown()
}
