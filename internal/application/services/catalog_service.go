// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/content"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
)

// CatalogService orchestrates product operations with cache-first repository pattern
type CatalogService struct {
	productRepo repositories.ProductRepository
	logger      *logging.ChanneledLogger
	now         func() time.Time
}

// NewCatalogService creates a new catalog application service
func NewCatalogService(productRepo repositories.ProductRepository, logger *logging.ChanneledLogger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns every product, newest first.
func (s *CatalogService) List(ctx context.Context) ([]*catalog.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*catalog.Product, error) {
	if id == "" {
		return nil, apperr.InvalidErr("product ID cannot be empty", nil)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if product == nil {
		return nil, apperr.NotFoundErr("product not found")
	}
	return product, nil
}

// Create validates and inserts one product.
func (s *CatalogService) Create(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	draft.Normalize()
	if err := catalog.ValidateDraft(draft); err != nil {
		return nil, err
	}

	product := draft.ToProduct(security.GenerateULID(), s.now())
	if err := s.productRepo.Store(ctx, product); err != nil {
		s.logger.Catalog().Error("Product create failed", "error", err.Error(), "title", product.Title)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Catalog().Info("Product created", "id", product.ID, "category", product.Category)
	return product, nil
}

// CreateMany inserts drafts in a single transaction and returns the rows in
// input order. Every draft is validated before anything is written. drafts
// itself is left as passed.
func (s *CatalogService) CreateMany(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	if len(drafts) == 0 {
		return nil, apperr.InvalidErr("no products to insert", nil)
	}

	now := s.now()
	products := make([]*catalog.Product, 0, len(drafts))
	for i, draft := range drafts {
		draft.Normalize()
		if err := catalog.ValidateDraft(draft); err != nil {
			if ae, ok := apperr.As(err); ok {
				return nil, apperr.InvalidErr(fmt.Sprintf("product %d: %s", i+1, ae.PublicMsg), ae.Fields)
			}
			return nil, err
		}
		products = append(products, draft.ToProduct(security.GenerateULID(), now))
	}

	if err := s.productRepo.StoreMany(ctx, products); err != nil {
		s.logger.Catalog().Error("Bulk product create failed", "error", err.Error(), "count", len(products))
		return nil, fmt.Errorf("failed to create products: %w", err)
	}

	s.logger.Catalog().Info("Products created", "count", len(products))
	return products, nil
}

// Update writes only the supplied fields.
func (s *CatalogService) Update(ctx context.Context, id string, patch catalog.ProductPatch) (*catalog.Product, error) {
	if patch.IsEmpty() {
		return nil, apperr.InvalidErr("no fields to update", nil)
	}
	previous, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := previous.Clone()
	patch.Apply(updated)
	if err := catalog.ValidateProduct(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now()

	if err := s.productRepo.Update(ctx, updated, previous); err != nil {
		if errors.Is(err, content.ErrProductNotFound) {
			return nil, apperr.NotFoundErr("product not found")
		}
		s.logger.Catalog().Error("Product update failed", "error", err.Error(), "id", id)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Catalog().Info("Product updated", "id", id)
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, product); err != nil {
		if errors.Is(err, content.ErrProductNotFound) {
			return apperr.NotFoundErr("product not found")
		}
		s.logger.Catalog().Error("Product delete failed", "error", err.Error(), "id", id)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Catalog().Info("Product deleted", "id", id)
	return nil
}
