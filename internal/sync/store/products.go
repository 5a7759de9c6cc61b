package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/spreadsheet"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

// ProductStore caches the catalog newest first.
type ProductStore struct {
	base

	mu       sync.RWMutex
	products []*catalog.Product
	loading  bool
}

func NewProductStore(client remote.Client, opts ...Option) *ProductStore {
	return &ProductStore{base: newBase(client, opts)}
}

// Load replaces the cache with the remote catalog. An empty catalog is
// seeded with the demo products and fetched again. Seeding needs a session;
// without one the catalog stays empty.
func (s *ProductStore) Load(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	products, err := s.client.ListProducts(ctx)
	if err != nil {
		s.logger.Error("Product load failed", "error", err.Error())
		s.failure(notify.MsgProductsLoadFailed)
		return
	}

	if len(products) == 0 {
		if _, err := s.client.InsertProducts(ctx, catalog.DemoProducts()); err != nil {
			s.logger.Warn("Demo product seeding skipped", "error", err.Error())
		} else if products, err = s.client.ListProducts(ctx); err != nil {
			s.logger.Error("Product reload after seeding failed", "error", err.Error())
			s.failure(notify.MsgProductsLoadFailed)
			return
		}
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	s.logger.Debug("Products loaded", "count", len(products))
}

// Refetch reloads from the remote.
func (s *ProductStore) Refetch(ctx context.Context) { s.Load(ctx) }

// Add validates draft, inserts it and prepends the stored record. An
// invalid draft never reaches the remote.
func (s *ProductStore) Add(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	if err := catalog.ValidateDraft(draft); err != nil {
		s.notifier.Notify(notify.Failure(notify.TitleError, notify.MsgProductInvalid))
		return nil, err
	}

	created, err := s.client.InsertProduct(ctx, draft)
	if err != nil {
		s.logger.Error("Product insert failed", "title", draft.Title, "error", err.Error())
		s.failure(notify.MsgProductAddFailed)
		return nil, fmt.Errorf("add product: %w", err)
	}

	s.reconcile(events.Change[catalog.Product]{Table: events.TableProducts, Kind: events.KindInsert, New: created})
	s.success(notify.MsgProductAdded)
	return created.Clone(), nil
}

// Update writes the supplied fields and merges them into the cached entry.
func (s *ProductStore) Update(ctx context.Context, id string, patch catalog.ProductPatch) error {
	updated, err := s.client.UpdateProduct(ctx, id, patch)
	if err != nil {
		s.logger.Error("Product update failed", "id", id, "error", err.Error())
		s.failure(notify.MsgProductUpdateFailed)
		return fmt.Errorf("update product %s: %w", id, err)
	}

	merged := updated
	if cached := s.Get(id); cached != nil {
		patch.Apply(cached)
		if updated != nil {
			cached.UpdatedAt = updated.UpdatedAt
		}
		merged = cached
	}
	if merged != nil {
		s.reconcile(events.Change[catalog.Product]{Table: events.TableProducts, Kind: events.KindUpdate, New: merged})
	}
	s.success(notify.MsgProductUpdated)
	return nil
}

// Delete removes id remotely, then from the cache.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("Product delete failed", "id", id, "error", err.Error())
		s.failure(notify.MsgProductDeleteFailed)
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	s.reconcile(events.Change[catalog.Product]{Table: events.TableProducts, Kind: events.KindDelete, Old: &catalog.Product{ID: id}})
	s.success(notify.MsgProductDeleted)
	return nil
}

// BulkImport inserts drafts in one request. Either every returned row is
// prepended in response order or the cache is left as it was.
func (s *ProductStore) BulkImport(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	if len(drafts) == 0 {
		s.failure(notify.MsgImportEmpty)
		return nil, apperr.InvalidErr("nothing to import", nil)
	}

	created, err := s.client.InsertProducts(ctx, drafts)
	if err != nil {
		s.logger.Error("Bulk import failed", "count", len(drafts), "error", err.Error())
		s.failure(notify.MsgImportFailed)
		return nil, fmt.Errorf("bulk import: %w", err)
	}

	s.prepend(created)
	s.success(fmt.Sprintf(notify.MsgImportedFmt, len(created)))
	s.logger.Info("Products imported", "count", len(created))

	out := make([]*catalog.Product, len(created))
	for i, p := range created {
		out[i] = p.Clone()
	}
	return out, nil
}

// ImportSpreadsheet parses a CSV or XLSX file and bulk-imports its rows.
// A sheet without the title and category columns is rejected before any
// remote call.
func (s *ProductStore) ImportSpreadsheet(ctx context.Context, filename string, r io.Reader) ([]*catalog.Product, error) {
	drafts, err := spreadsheet.ParseFile(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrMissingColumns):
			s.notifier.Notify(notify.Failure(notify.TitleFormatError, notify.MsgImportMissingCols))
		case errors.Is(err, spreadsheet.ErrEmptySheet):
			s.failure(notify.MsgImportEmpty)
		default:
			s.failure(notify.MsgImportFailed)
		}
		s.logger.Warn("Spreadsheet rejected", "file", filename, "error", err.Error())
		return nil, err
	}
	return s.BulkImport(ctx, drafts)
}

// Follow applies remote product changes until ctx is done.
func (s *ProductStore) Follow(ctx context.Context) (<-chan struct{}, error) {
	return s.follow(ctx, events.TableProducts, s.applyEvent)
}

func (s *ProductStore) applyEvent(evt events.ChangeEvent) {
	change, err := events.Decode[catalog.Product](evt)
	if err != nil {
		s.logger.Warn("Ignoring undecodable product event", "kind", evt.Kind, "error", err.Error())
		return
	}
	s.reconcile(change)
}

// reconcile is the single cache mutation path for local writes and
// realtime events. Last arrival wins.
func (s *ProductStore) reconcile(change events.Change[catalog.Product]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch change.Kind {
	case events.KindInsert:
		if change.New == nil || s.indexOf(change.New.ID) >= 0 {
			return
		}
		s.products = append([]*catalog.Product{change.New.Clone()}, s.products...)
	case events.KindUpdate:
		if change.New == nil {
			return
		}
		if i := s.indexOf(change.New.ID); i >= 0 {
			s.products[i] = change.New.Clone()
		}
	case events.KindDelete:
		row := change.Old
		if row == nil {
			row = change.New
		}
		if row == nil {
			return
		}
		s.products = slices.DeleteFunc(s.products, func(p *catalog.Product) bool { return p.ID == row.ID })
	}
}

// prepend puts rows in order ahead of the cache. Rows already cached,
// such as realtime echoes that beat the response, are moved rather than
// duplicated.
func (s *ProductStore) prepend(rows []*catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(rows))
	fresh := make([]*catalog.Product, 0, len(rows)+len(s.products))
	for _, p := range rows {
		ids[p.ID] = struct{}{}
		fresh = append(fresh, p.Clone())
	}
	for _, p := range s.products {
		if _, dup := ids[p.ID]; !dup {
			fresh = append(fresh, p)
		}
	}
	s.products = fresh
}

// indexOf expects s.mu to be held.
func (s *ProductStore) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p *catalog.Product) bool { return p.ID == id })
}

// Products returns a copy of the cache, newest first.
func (s *ProductStore) Products() []*catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the cached product, or nil.
func (s *ProductStore) Get(id string) *catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.products[i].Clone()
	}
	return nil
}

// FilteredByCategory returns the non-featured products in category, or all
// of them for catalog.AllCategories.
func (s *ProductStore) FilteredByCategory(category string) []*catalog.Product {
	return catalog.FilterByCategory(s.Products(), category)
}

func (s *ProductStore) Featured() []*catalog.Product {
	return catalog.Featured(s.Products())
}

func (s *ProductStore) Categories() []string {
	return catalog.Categories(s.Products())
}

// Loading reports whether a Load is in flight.
func (s *ProductStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *ProductStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
