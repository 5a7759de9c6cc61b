package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
)

type ContentRepository struct {
	db        *sql.DB
	cache     interfaces.CatalogCache
	publisher messaging.Publisher
	logger    *logging.ChanneledLogger
}

var _ repositories.ContentRepository = (*ContentRepository)(nil)

func NewContentRepository(db *sql.DB, cache interfaces.CatalogCache, publisher messaging.Publisher, logger *logging.ChanneledLogger) *ContentRepository {
	return &ContentRepository{
		db:        db,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// FindAll returns every stored entry sorted by key.
func (r *ContentRepository) FindAll(ctx context.Context) ([]*catalog.ContentItem, error) {
	if items, found := r.cache.GetAllContent(); found {
		sortContent(items)
		return items, nil
	}

	query := `SELECT key, value, updated_at FROM content ORDER BY key`

	start := time.Now()
	r.logger.Database().Debug("Loading all content from database")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Database().Error("Failed to query content", "error", err.Error())
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	items := []*catalog.ContentItem{}
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Loaded content from database", "count", len(items), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetAllContent(items)
	return items, nil
}

// FindByKey returns nil, nil for an unknown key.
func (r *ContentRepository) FindByKey(ctx context.Context, key string) (*catalog.ContentItem, error) {
	if item, found := r.cache.GetContent(key); found {
		return item, nil
	}

	query := `SELECT key, value, updated_at FROM content WHERE key = ?`
	start := time.Now()

	item, err := scanContent(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load content", "error", err.Error(), "key", key)
		return nil, err
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	r.cache.SetContent(item)
	return item, nil
}

// Upsert inserts or replaces the value stored under item.Key. The published
// event kind tells subscribers which of the two happened.
func (r *ContentRepository) Upsert(ctx context.Context, item *catalog.ContentItem) error {
	previous, err := r.FindByKey(ctx, item.Key)
	if err != nil {
		return err
	}

	query := `INSERT INTO content (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	start := time.Now()
	r.logger.Database().Debug("Executing content upsert", "key", item.Key)

	if _, err := r.db.ExecContext(ctx, query, item.Key, item.Value, database.FormatTime(item.UpdatedAt)); err != nil {
		r.logger.Database().Error("Content upsert failed", "error", err.Error(), "key", item.Key)
		return fmt.Errorf("failed to upsert content: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Content upsert completed", "key", item.Key, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetContent(item)

	kind := events.KindInsert
	if previous != nil {
		kind = events.KindUpdate
	}
	publishChange(r.publisher, r.logger, events.TableContent, kind, item, previous)
	return nil
}

func scanContent(row rowScanner) (*catalog.ContentItem, error) {
	var item catalog.ContentItem
	var updatedAt string
	err := row.Scan(&item.Key, &item.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	if item.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func sortContent(items []*catalog.ContentItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
}
