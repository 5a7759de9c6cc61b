// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/monitoring"
)

// CatalogStore is an in-memory CatalogCache.
type CatalogStore struct {
	mu sync.RWMutex

	products   map[string]*catalog.Product
	productIDs []string // nil means the ordered list is not cached

	content     map[string]*catalog.ContentItem
	contentWarm bool

	settings *catalog.WebsiteSettings

	lastUpdated time.Time
	monitor     *monitoring.CacheMonitor
}

var _ interfaces.CatalogCache = (*CatalogStore)(nil)

// NewCatalogStore creates an empty store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		products:    make(map[string]*catalog.Product),
		content:     make(map[string]*catalog.ContentItem),
		lastUpdated: time.Now().UTC(),
		monitor:     monitoring.NewCacheMonitor(monitoring.DefaultCacheMonitorConfig()),
	}
}

func (s *CatalogStore) touch() {
	s.lastUpdated = time.Now().UTC()
}

func (s *CatalogStore) record(layer string, start time.Time, hit bool) {
	s.monitor.RecordLookup(layer, hit, time.Since(start))
}

// =============================================================================
// Products
// =============================================================================

func (s *CatalogStore) GetProduct(id string) (*catalog.Product, bool) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	s.record(monitoring.LayerProducts, start, ok)
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (s *CatalogStore) SetProduct(product *catalog.Product) {
	if product == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product.Clone()
	s.touch()
}

// RemoveProduct drops the product and its slot in the ordered list.
func (s *CatalogStore) RemoveProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	if s.productIDs != nil {
		kept := make([]string, 0, len(s.productIDs))
		for _, existing := range s.productIDs {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		s.productIDs = kept
	}
	s.touch()
}

func (s *CatalogStore) GetAllProductIDs() ([]string, bool) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.record(monitoring.LayerProducts, start, s.productIDs != nil)
	if s.productIDs == nil {
		return nil, false
	}
	return append([]string(nil), s.productIDs...), true
}

func (s *CatalogStore) SetAllProductIDs(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productIDs = append(make([]string, 0, len(ids)), ids...)
	s.touch()
}

// PrependProductIDs puts newly inserted ids at the head of a warm list. A
// cold list stays cold.
func (s *CatalogStore) PrependProductIDs(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.productIDs == nil {
		return
	}
	next := make([]string, 0, len(ids)+len(s.productIDs))
	next = append(next, ids...)
	s.productIDs = append(next, s.productIDs...)
	s.touch()
}

func (s *CatalogStore) InvalidateProductList() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productIDs = nil
	s.touch()
}

// =============================================================================
// Content
// =============================================================================

func (s *CatalogStore) GetContent(key string) (*catalog.ContentItem, bool) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.content[key]
	s.record(monitoring.LayerContent, start, ok)
	if !ok {
		return nil, false
	}
	cp := *item
	return &cp, true
}

func (s *CatalogStore) SetContent(item *catalog.ContentItem) {
	if item == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.content[item.Key] = &cp
	s.touch()
}

func (s *CatalogStore) GetAllContent() ([]*catalog.ContentItem, bool) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.record(monitoring.LayerContent, start, s.contentWarm)
	if !s.contentWarm {
		return nil, false
	}
	out := make([]*catalog.ContentItem, 0, len(s.content))
	for _, item := range s.content {
		cp := *item
		out = append(out, &cp)
	}
	return out, true
}

func (s *CatalogStore) SetAllContent(items []*catalog.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = make(map[string]*catalog.ContentItem, len(items))
	for _, item := range items {
		cp := *item
		s.content[item.Key] = &cp
	}
	s.contentWarm = true
	s.touch()
}

// =============================================================================
// Settings
// =============================================================================

func (s *CatalogStore) GetSettings() (*catalog.WebsiteSettings, bool) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.record(monitoring.LayerSettings, start, s.settings != nil)
	if s.settings == nil {
		return nil, false
	}
	cp := *s.settings
	if s.settings.RedirectURL != nil {
		v := *s.settings.RedirectURL
		cp.RedirectURL = &v
	}
	return &cp, true
}

func (s *CatalogStore) SetSettings(settings *catalog.WebsiteSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings == nil {
		s.settings = nil
		return
	}
	cp := *settings
	if settings.RedirectURL != nil {
		v := *settings.RedirectURL
		cp.RedirectURL = &v
	}
	s.settings = &cp
	s.touch()
}

// =============================================================================
// Maintenance
// =============================================================================

// InvalidateAll empties every section of the store.
func (s *CatalogStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]*catalog.Product)
	s.productIDs = nil
	s.content = make(map[string]*catalog.ContentItem)
	s.contentWarm = false
	s.settings = nil
	s.touch()
}

func (s *CatalogStore) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

func (s *CatalogStore) Stats() interfaces.CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return interfaces.CacheStats{
		Products:        len(s.products),
		ProductListWarm: s.productIDs != nil,
		ContentItems:    len(s.content),
		ContentWarm:     s.contentWarm,
		SettingsWarm:    s.settings != nil,
		LastUpdated:     s.lastUpdated,
		Lookups:         s.monitor.Report(),
	}
}
