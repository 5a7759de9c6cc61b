// Package repositories defines the persistence interfaces for storefront
// entities. Implementations publish a change event after every committed write.
package repositories

import (
	"context"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]*catalog.Product, error)
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	Count(ctx context.Context) (int, error)
	Store(ctx context.Context, product *catalog.Product) error
	StoreMany(ctx context.Context, products []*catalog.Product) error
	Update(ctx context.Context, product *catalog.Product, previous *catalog.Product) error
	Delete(ctx context.Context, product *catalog.Product) error
}

type ContentRepository interface {
	FindAll(ctx context.Context) ([]*catalog.ContentItem, error)
	FindByKey(ctx context.Context, key string) (*catalog.ContentItem, error)
	Upsert(ctx context.Context, item *catalog.ContentItem) error
}

type SettingsRepository interface {
	Find(ctx context.Context) (*catalog.WebsiteSettings, error)
	Store(ctx context.Context, settings *catalog.WebsiteSettings) error
	Update(ctx context.Context, settings *catalog.WebsiteSettings, previous *catalog.WebsiteSettings) error
}
