package services

import (
	"context"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"golang.org/x/sync/errgroup"
)

// Snapshot is everything the public storefront renders in one payload.
type Snapshot struct {
	Content    map[string]string        `json:"content"`
	Featured   []*catalog.Product       `json:"featured"`
	Products   []*catalog.Product       `json:"products"`
	Categories []string                 `json:"categories"`
	Settings   *catalog.WebsiteSettings `json:"settings"`
}

// StorefrontService assembles the public view.
type StorefrontService struct {
	catalog  *CatalogService
	content  *ContentService
	settings *SettingsService
}

func NewStorefrontService(catalogService *CatalogService, contentService *ContentService, settingsService *SettingsService) *StorefrontService {
	return &StorefrontService{catalog: catalogService, content: contentService, settings: settingsService}
}

// Snapshot loads content, products and settings concurrently. Products are
// the non-featured ones in category; an empty category means all of them.
func (s *StorefrontService) Snapshot(ctx context.Context, category string) (*Snapshot, error) {
	var (
		content  map[string]string
		products []*catalog.Product
		settings *catalog.WebsiteSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		content, err = s.content.Merged(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.catalog.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		settings, err = s.settings.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if category == "" {
		category = catalog.AllCategories
	}
	return &Snapshot{
		Content:    content,
		Featured:   catalog.Featured(products),
		Products:   catalog.FilterByCategory(products, category),
		Categories: catalog.Categories(products),
		Settings:   settings,
	}, nil
}

// RedirectFor returns the configured redirect target for an anonymous
// viewer, or "" when the storefront should render.
func (s *StorefrontService) RedirectFor(ctx context.Context, authenticated bool) (string, error) {
	if authenticated {
		return "", nil
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	return settings.ActiveRedirect(), nil
}
