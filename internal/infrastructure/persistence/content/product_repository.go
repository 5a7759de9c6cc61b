package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
)

// ErrProductNotFound is returned by writes that target a missing row.
var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, title, description, category, images, purchase_link, shop_link, is_featured, created_at, updated_at`

type ProductRepository struct {
	db        *sql.DB
	cache     interfaces.CatalogCache
	publisher messaging.Publisher
	logger    *logging.ChanneledLogger
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(db *sql.DB, cache interfaces.CatalogCache, publisher messaging.Publisher, logger *logging.ChanneledLogger) *ProductRepository {
	return &ProductRepository{
		db:        db,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// FindAll returns every product newest first, employing a cache-first strategy.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	if ids, found := r.cache.GetAllProductIDs(); found {
		products := make([]*catalog.Product, 0, len(ids))
		complete := true
		for _, id := range ids {
			p, ok := r.cache.GetProduct(id)
			if !ok {
				complete = false
				break
			}
			products = append(products, p)
		}
		if complete {
			return products, nil
		}
		r.logger.Cache().Debug("Product list cache incomplete, reloading", "ids", len(ids))
	}

	products, err := r.loadAllFromDB(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		r.cache.SetProduct(p)
		ids = append(ids, p.ID)
	}
	r.cache.SetAllProductIDs(ids)
	return products, nil
}

// FindByID returns nil, nil when no product has the id.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	if product, found := r.cache.GetProduct(id); found {
		return product, nil
	}

	product, err := r.loadFromDB(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	r.cache.SetProduct(product)
	return product, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	if ids, found := r.cache.GetAllProductIDs(); found {
		return len(ids), nil
	}

	query := `SELECT COUNT(*) FROM products`
	start := time.Now()

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		r.logger.Database().Error("Product count failed", "error", err.Error())
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))
	return count, nil
}

func (r *ProductRepository) Store(ctx context.Context, product *catalog.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args, err := productArgs(product)
	if err != nil {
		return err
	}

	start := time.Now()
	r.logger.Database().Debug("Executing product insert", "id", product.ID)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Database().Error("Product insert failed", "error", err.Error(), "id", product.ID)
		return fmt.Errorf("failed to insert product: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Product insert completed", "id", product.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetProduct(product)
	r.cache.PrependProductIDs(product.ID)
	publishChange(r.publisher, r.logger, events.TableProducts, events.KindInsert, product, nil)
	return nil
}

// StoreMany inserts every product in one transaction. Nothing is written
// when any row fails.
func (r *ProductRepository) StoreMany(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing bulk product insert", "count", len(products))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Database().Error("Failed to begin bulk product transaction", "error", err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	for i, product := range products {
		args, err := productArgs(product)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			r.logger.Database().Error("Bulk product insert failed", "error", err.Error(), "row", i, "id", product.ID)
			return fmt.Errorf("failed to insert product %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Database().Error("Failed to commit bulk product insert", "error", err.Error())
		return fmt.Errorf("failed to commit products: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Bulk product insert completed", "count", len(products), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, "BULK_INSERT products", duration)

	r.cache.InvalidateProductList()
	for _, product := range products {
		r.cache.SetProduct(product)
		publishChange(r.publisher, r.logger, events.TableProducts, events.KindInsert, product, nil)
	}
	return nil
}

// Update overwrites the row. previous is the row before the change and is
// carried in the published event.
func (r *ProductRepository) Update(ctx context.Context, product *catalog.Product, previous *catalog.Product) error {
	query := `UPDATE products SET title = ?, description = ?, category = ?, images = ?, purchase_link = ?, shop_link = ?, is_featured = ?, updated_at = ? WHERE id = ?`

	imagesJSON, err := marshalImages(product.Images)
	if err != nil {
		return err
	}

	start := time.Now()
	r.logger.Database().Debug("Executing product update", "id", product.ID)

	result, err := r.db.ExecContext(ctx, query,
		product.Title, product.Description, product.Category, imagesJSON,
		database.NullString(product.PurchaseLink), database.NullString(product.ShopLink),
		boolToInt(product.IsFeatured), database.FormatTime(product.UpdatedAt), product.ID)
	if err != nil {
		r.logger.Database().Error("Product update failed", "error", err.Error(), "id", product.ID)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		r.cache.RemoveProduct(product.ID)
		return fmt.Errorf("failed to update product %s: %w", product.ID, ErrProductNotFound)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Product update completed", "id", product.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	r.cache.SetProduct(product)
	publishChange(r.publisher, r.logger, events.TableProducts, events.KindUpdate, product, previous)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, product *catalog.Product) error {
	query := `DELETE FROM products WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing product delete", "id", product.ID)

	result, err := r.db.ExecContext(ctx, query, product.ID)
	if err != nil {
		r.logger.Database().Error("Product delete failed", "error", err.Error(), "id", product.ID)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	r.cache.RemoveProduct(product.ID)
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("failed to delete product %s: %w", product.ID, ErrProductNotFound)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Product delete completed", "id", product.ID, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)

	publishChange(r.publisher, r.logger, events.TableProducts, events.KindDelete, nil, product)
	return nil
}

func (r *ProductRepository) loadAllFromDB(ctx context.Context) ([]*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	start := time.Now()
	r.logger.Database().Debug("Loading all products from database")

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Database().Error("Failed to query products", "error", err.Error())
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*catalog.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan product", "error", err.Error())
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Info("Loaded products from database", "count", len(products), "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return products, nil
}

func (r *ProductRepository) loadFromDB(ctx context.Context, id string) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading product from database", "id", id)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to scan product", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Product loaded from database", "id", id, "duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return product, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var (
		p                    catalog.Product
		imagesJSON           string
		purchaseLink, shop   sql.NullString
		featured             int
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &imagesJSON,
		&purchaseLink, &shop, &featured, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if strings.TrimSpace(imagesJSON) == "" {
		imagesJSON = "[]"
	}
	if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
		return nil, fmt.Errorf("failed to parse images for product %s: %w", p.ID, err)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.PurchaseLink = database.StringPtr(purchaseLink)
	p.ShopLink = database.StringPtr(shop)
	p.IsFeatured = featured != 0

	if p.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func productArgs(p *catalog.Product) ([]any, error) {
	imagesJSON, err := marshalImages(p.Images)
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID, p.Title, p.Description, p.Category, imagesJSON,
		database.NullString(p.PurchaseLink), database.NullString(p.ShopLink),
		boolToInt(p.IsFeatured), database.FormatTime(p.CreatedAt), database.FormatTime(p.UpdatedAt),
	}, nil
}

func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to marshal images: %w", err)
	}
	return string(raw), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
