package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
)

// SettingsRepository persists the website settings singleton. When several
// rows exist the first inserted one is authoritative.
type SettingsRepository struct {
	db        *sql.DB
	cache     interfaces.CatalogCache
	publisher messaging.Publisher
	logger    *logging.ChanneledLogger
}

var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

func NewSettingsRepository(db *sql.DB, cache interfaces.CatalogCache, publisher messaging.Publisher, logger *logging.ChanneledLogger) *SettingsRepository {
	return &SettingsRepository{
		db:        db,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Find returns nil, nil when no settings row exists yet.
func (r *SettingsRepository) Find(ctx context.Context) (*catalog.WebsiteSettings, error) {
	if settings, found := r.cache.GetSettings(); found {
		return settings, nil
	}

	query := `SELECT id, redirect_url, site_title, updated_at FROM website_settings ORDER BY rowid LIMIT 1`

	start := time.Now()
	r.logger.Database().Debug("Loading website settings from database")

	var (
		s           catalog.WebsiteSettings
		redirectURL sql.NullString
		updatedAt   string
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &redirectURL, &s.SiteTitle, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load website settings", "error", err.Error())
		return nil, fmt.Errorf("failed to load website settings: %w", err)
	}
	s.RedirectURL = database.StringPtr(redirectURL)
	if s.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Website settings loaded from database", "id", s.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetSettings(&s)
	return &s, nil
}

func (r *SettingsRepository) Store(ctx context.Context, settings *catalog.WebsiteSettings) error {
	query := `INSERT INTO website_settings (id, redirect_url, site_title, updated_at) VALUES (?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing website settings insert", "id", settings.ID)

	_, err := r.db.ExecContext(ctx, query, settings.ID, database.NullString(settings.RedirectURL),
		settings.SiteTitle, database.FormatTime(settings.UpdatedAt))
	if err != nil {
		r.logger.Database().Error("Website settings insert failed", "error", err.Error(), "id", settings.ID)
		return fmt.Errorf("failed to insert website settings: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Website settings insert completed", "id", settings.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetSettings(settings)
	publishChange(r.publisher, r.logger, events.TableSettings, events.KindInsert, settings, nil)
	return nil
}

func (r *SettingsRepository) Update(ctx context.Context, settings *catalog.WebsiteSettings, previous *catalog.WebsiteSettings) error {
	query := `UPDATE website_settings SET redirect_url = ?, site_title = ?, updated_at = ? WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing website settings update", "id", settings.ID)

	result, err := r.db.ExecContext(ctx, query, database.NullString(settings.RedirectURL),
		settings.SiteTitle, database.FormatTime(settings.UpdatedAt), settings.ID)
	if err != nil {
		r.logger.Database().Error("Website settings update failed", "error", err.Error(), "id", settings.ID)
		return fmt.Errorf("failed to update website settings: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		r.cache.SetSettings(nil)
		return fmt.Errorf("failed to update website settings %s: no such row", settings.ID)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Website settings update completed", "id", settings.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetSettings(settings)
	publishChange(r.publisher, r.logger, events.TableSettings, events.KindUpdate, settings, previous)
	return nil
}
