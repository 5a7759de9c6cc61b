// Package interfaces defines cache operation contracts for storefront data.
package interfaces

import (
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/monitoring"
)

// CatalogCache defines operations for product, content and settings caching.
// Implementations store copies; callers may mutate what they get back.
type CatalogCache interface {
	GetProduct(id string) (*catalog.Product, bool)
	SetProduct(product *catalog.Product)
	RemoveProduct(id string)
	GetAllProductIDs() ([]string, bool)
	SetAllProductIDs(ids []string)
	PrependProductIDs(ids ...string)
	InvalidateProductList()

	GetContent(key string) (*catalog.ContentItem, bool)
	SetContent(item *catalog.ContentItem)
	GetAllContent() ([]*catalog.ContentItem, bool)
	SetAllContent(items []*catalog.ContentItem)

	GetSettings() (*catalog.WebsiteSettings, bool)
	SetSettings(settings *catalog.WebsiteSettings)

	InvalidateAll()
	LastUpdated() time.Time
	Stats() CacheStats
}

// CacheStats summarizes cache contents for reporting.
type CacheStats struct {
	Products        int       `json:"products"`
	ProductListWarm bool      `json:"productListWarm"`
	ContentItems    int       `json:"contentItems"`
	ContentWarm     bool      `json:"contentWarm"`
	SettingsWarm    bool      `json:"settingsWarm"`
	LastUpdated     time.Time `json:"lastUpdated"`

	Lookups monitoring.CacheReport `json:"lookups"`
}
