package content

import (
	"context"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	products *ProductRepository
	content  *ContentRepository
	settings *SettingsRepository
	cache    *stores.CatalogStore
	feed     *messaging.ChangeFeed
	changes  <-chan events.ChangeEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	logger := logging.NewDiscardLogger()
	cache := stores.NewCatalogStore()
	feed := messaging.NewChangeFeed(64, logger)
	t.Cleanup(feed.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	return &fixture{
		products: NewProductRepository(db.DB, cache, feed, logger),
		content:  NewContentRepository(db.DB, cache, feed, logger),
		settings: NewSettingsRepository(db.DB, cache, feed, logger),
		cache:    cache,
		feed:     feed,
		changes:  changes,
	}
}

func (f *fixture) nextChange(t *testing.T) events.ChangeEvent {
	t.Helper()
	select {
	case evt := <-f.changes:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no change event published")
		return events.ChangeEvent{}
	}
}

func product(id, title string, created time.Time) *catalog.Product {
	draft := catalog.ProductDraft{
		Title:        title,
		Category:     "Hoodies",
		Images:       []string{"https://img/1.jpg", "https://img/2.jpg"},
		PurchaseLink: catalog.StringPtr("https://buy"),
	}
	return draft.ToProduct(id, created)
}

func TestProductRepositoryStoreAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, f.products.Store(ctx, product("a", "Older", base)))
	require.NoError(t, f.products.Store(ctx, product("b", "Newer", base.Add(time.Minute))))

	f.cache.InvalidateAll()
	all, err := f.products.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, all[1].Images)
	require.NotNil(t, all[1].PurchaseLink)
	assert.Equal(t, "https://buy", *all[1].PurchaseLink)
	assert.Nil(t, all[1].ShopLink)
	assert.True(t, all[1].CreatedAt.Equal(base))

	got, err := f.products.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := f.products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	evt := f.nextChange(t)
	assert.Equal(t, events.TableProducts, evt.Table)
	assert.Equal(t, events.KindInsert, evt.Kind)
}

func TestProductRepositoryCacheReturnsCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.products.Store(ctx, product("a", "Hoodie", time.Now())))

	got, err := f.products.FindByID(ctx, "a")
	require.NoError(t, err)
	got.Title = "mutated"
	got.Images[0] = "mutated"

	again, err := f.products.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", again.Title)
	assert.Equal(t, "https://img/1.jpg", again.Images[0])
}

func TestProductRepositoryStoreManyIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, f.products.Store(ctx, product("dup", "Existing", now)))
	f.nextChange(t)

	err := f.products.StoreMany(ctx, []*catalog.Product{
		product("fresh", "Fresh", now),
		product("dup", "Collides", now),
	})
	require.Error(t, err)

	f.cache.InvalidateAll()
	all, err := f.products.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dup", all[0].ID)

	require.NoError(t, f.products.StoreMany(ctx, []*catalog.Product{
		product("x", "X", now.Add(time.Second)),
		product("y", "Y", now.Add(time.Second)),
	}))
	all, err = f.products.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, events.KindInsert, f.nextChange(t).Kind)
	assert.Equal(t, events.KindInsert, f.nextChange(t).Kind)
}

func TestProductRepositoryUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := product("a", "Hoodie", time.Now())
	require.NoError(t, f.products.Store(ctx, original))
	f.nextChange(t)

	updated := original.Clone()
	catalog.ProductPatch{Title: catalog.StringPtr("Renamed"), PurchaseLink: catalog.StringPtr("")}.Apply(updated)
	updated.UpdatedAt = time.Now()
	require.NoError(t, f.products.Update(ctx, updated, original))

	evt := f.nextChange(t)
	change, err := events.Decode[catalog.Product](evt)
	require.NoError(t, err)
	assert.Equal(t, events.KindUpdate, change.Kind)
	assert.Equal(t, "Renamed", change.New.Title)
	assert.Equal(t, "Hoodie", change.Old.Title)

	f.cache.InvalidateAll()
	got, err := f.products.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Nil(t, got.PurchaseLink)

	require.NoError(t, f.products.Delete(ctx, got))
	evt = f.nextChange(t)
	assert.Equal(t, events.KindDelete, evt.Kind)
	assert.Empty(t, evt.New)

	err = f.products.Delete(ctx, got)
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = f.products.Update(ctx, updated, original)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestContentRepositoryUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := &catalog.ContentItem{Key: catalog.KeyHeroTitle, Value: "Hello", UpdatedAt: time.Now()}
	require.NoError(t, f.content.Upsert(ctx, item))
	assert.Equal(t, events.KindInsert, f.nextChange(t).Kind)

	item.Value = "Updated"
	require.NoError(t, f.content.Upsert(ctx, item))
	evt := f.nextChange(t)
	assert.Equal(t, events.KindUpdate, evt.Kind)
	assert.Equal(t, events.TableContent, evt.Table)

	f.cache.InvalidateAll()
	all, err := f.content.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Updated", all[0].Value)

	missing, err := f.content.FindByKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSettingsRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	none, err := f.settings.Find(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	s := &catalog.WebsiteSettings{ID: "s1", SiteTitle: "Shop", RedirectURL: catalog.StringPtr("https://x"), UpdatedAt: time.Now()}
	require.NoError(t, f.settings.Store(ctx, s))
	assert.Equal(t, events.KindInsert, f.nextChange(t).Kind)

	prev := *s
	s.RedirectURL = nil
	require.NoError(t, f.settings.Update(ctx, s, &prev))
	assert.Equal(t, events.KindUpdate, f.nextChange(t).Kind)

	f.cache.InvalidateAll()
	got, err := f.settings.Find(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.RedirectURL)
	assert.Equal(t, "Shop", got.SiteTitle)
}
