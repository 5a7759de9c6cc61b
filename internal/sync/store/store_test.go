package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/spreadsheet"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productEvent(t *testing.T, kind events.Kind, newRow, oldRow *catalog.Product) events.ChangeEvent {
	t.Helper()
	evt, err := events.NewChangeEvent(events.TableProducts, kind, newRow, oldRow)
	require.NoError(t, err)
	return evt
}

func contentEvent(t *testing.T, kind events.Kind, key, value string) events.ChangeEvent {
	t.Helper()
	evt, err := events.NewChangeEvent(events.TableContent, kind, &catalog.ContentItem{Key: key, Value: value}, nil)
	require.NoError(t, err)
	return evt
}

func TestContentLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	client := newFakeClient()
	client.content[catalog.KeyHeroTitle] = "SUMMER DROP"
	s := NewContentStore(client)

	s.Load(context.Background())

	got, ok := s.Get(catalog.KeyHeroTitle)
	require.True(t, ok)
	assert.Equal(t, "SUMMER DROP", got)
	for _, key := range catalog.DefaultContentKeys() {
		if key == catalog.KeyHeroTitle {
			continue
		}
		got, _ := s.Get(key)
		assert.Equal(t, catalog.DefaultContent()[key], got, key)
	}
	assert.False(t, s.Loading())
}

func TestContentLoadFailureKeepsDefaults(t *testing.T) {
	client := newFakeClient()
	client.fail["ListContent"] = true
	rec := &notify.Recorder{}
	s := NewContentStore(client, WithNotifier(rec))

	s.Load(context.Background())

	assert.Equal(t, catalog.DefaultContent(), s.Snapshot())
	assert.Equal(t, notify.Failure(notify.TitleError, notify.MsgContentLoadFailed), rec.Last())
}

func TestContentUpdateThenLoad(t *testing.T) {
	client := newFakeClient()
	rec := &notify.Recorder{}
	s := NewContentStore(client, WithNotifier(rec))
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, catalog.KeyFooterText, "© 2026"))
	got, _ := s.Get(catalog.KeyFooterText)
	assert.Equal(t, "© 2026", got)
	assert.Equal(t, notify.Success(notify.MsgContentUpdated), rec.Last())

	fresh := NewContentStore(client)
	fresh.Load(ctx)
	got, _ = fresh.Get(catalog.KeyFooterText)
	assert.Equal(t, "© 2026", got)
}

func TestContentUpdateFailureLeavesCache(t *testing.T) {
	client := newFakeClient()
	client.fail["UpsertContent"] = true
	rec := &notify.Recorder{}
	s := NewContentStore(client, WithNotifier(rec))

	err := s.Update(context.Background(), catalog.KeyHeroTitle, "nope")
	require.ErrorIs(t, err, errRemote)
	got, _ := s.Get(catalog.KeyHeroTitle)
	assert.Equal(t, catalog.DefaultContent()[catalog.KeyHeroTitle], got)
	assert.Equal(t, notify.LevelError, rec.Last().Level)
}

func TestContentRealtimeOnlyTouchesKnownKeys(t *testing.T) {
	s := NewContentStore(newFakeClient())

	s.apply(contentEvent(t, events.KindUpdate, catalog.KeyHeroSubtitle, "Live edit"))
	s.apply(contentEvent(t, events.KindInsert, "mysteryKey", "ignored"))
	s.apply(contentEvent(t, events.KindDelete, catalog.KeyHeroTitle, ""))

	got, _ := s.Get(catalog.KeyHeroSubtitle)
	assert.Equal(t, "Live edit", got)
	_, ok := s.Get("mysteryKey")
	assert.False(t, ok)
	got, _ = s.Get(catalog.KeyHeroTitle)
	assert.Equal(t, catalog.DefaultContent()[catalog.KeyHeroTitle], got)
}

func TestContentFollow(t *testing.T) {
	client := newFakeClient()
	s := NewContentStore(client)
	ctx, cancel := context.WithCancel(context.Background())

	done, err := s.Follow(ctx)
	require.NoError(t, err)
	client.feed <- contentEvent(t, events.KindUpdate, catalog.KeyAboutTitle, "Về chúng tôi")

	require.Eventually(t, func() bool {
		got, _ := s.Get(catalog.KeyAboutTitle)
		return got == "Về chúng tôi"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("follow goroutine did not exit")
	}
}

func TestProductLoadSeedsDemoProducts(t *testing.T) {
	client := newFakeClient()
	s := NewProductStore(client)

	s.Load(context.Background())

	products := s.Products()
	require.Len(t, products, 3)
	for _, p := range products {
		assert.True(t, p.IsFeatured, p.Title)
	}
	assert.Equal(t, 1, client.count("InsertProducts"))
	assert.Equal(t, 2, client.count("ListProducts"))

	s.Load(context.Background())
	assert.Equal(t, 1, client.count("InsertProducts"))
}

func TestProductLoadSeedFailureLeavesEmpty(t *testing.T) {
	client := newFakeClient()
	client.fail["InsertProducts"] = true
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))

	s.Load(context.Background())

	assert.Empty(t, s.Products())
	assert.Empty(t, rec.Notices())
}

func TestProductLoadFailure(t *testing.T) {
	client := newFakeClient()
	client.fail["ListProducts"] = true
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))

	s.Load(context.Background())

	assert.Empty(t, s.Products())
	assert.Equal(t, notify.Failure(notify.TitleError, notify.MsgProductsLoadFailed), rec.Last())
}

func TestProductAddValidatesBeforeRemote(t *testing.T) {
	client := newFakeClient()
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))

	_, err := s.Add(context.Background(), catalog.ProductDraft{Title: "  ", Category: "Hoodies"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Invalid))
	assert.Zero(t, client.count("InsertProduct"))
	assert.Equal(t, notify.MsgProductInvalid, rec.Last().Message)
}

func TestProductAddPrependsOnce(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "old", Title: "Old", Category: "Tees"}}
	s := NewProductStore(client)
	ctx := context.Background()
	s.Load(ctx)

	created, err := s.Add(ctx, catalog.ProductDraft{Title: "Hoodie", Category: "Hoodies"})
	require.NoError(t, err)

	products := s.Products()
	require.Len(t, products, 2)
	assert.Equal(t, created.ID, products[0].ID)

	// The realtime echo of the same insert is a no-op.
	s.applyEvent(productEvent(t, events.KindInsert, created, nil))
	count := 0
	for _, p := range s.Products() {
		if p.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestProductUpdateMergesFields(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "p1", Title: "Tee", Category: "Tees", Description: "Soft"}}
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))
	ctx := context.Background()
	s.Load(ctx)

	require.NoError(t, s.Update(ctx, "p1", catalog.ProductPatch{Title: catalog.StringPtr("Vintage Tee")}))

	p := s.Get("p1")
	require.NotNil(t, p)
	assert.Equal(t, "Vintage Tee", p.Title)
	assert.Equal(t, "Soft", p.Description)
	assert.Equal(t, notify.Success(notify.MsgProductUpdated), rec.Last())
}

func TestProductUpdateFailureLeavesCache(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "p1", Title: "Tee", Category: "Tees"}}
	s := NewProductStore(client)
	ctx := context.Background()
	s.Load(ctx)
	client.fail["UpdateProduct"] = true

	err := s.Update(ctx, "p1", catalog.ProductPatch{Title: catalog.StringPtr("Changed")})
	require.Error(t, err)
	assert.Equal(t, "Tee", s.Get("p1").Title)
}

func TestProductDelete(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "p1", Title: "Tee", Category: "Tees"}, {ID: "p2", Title: "Cap", Category: "Hats"}}
	s := NewProductStore(client)
	ctx := context.Background()
	s.Load(ctx)

	require.NoError(t, s.Delete(ctx, "p1"))
	assert.Nil(t, s.Get("p1"))
	assert.Len(t, s.Products(), 1)

	client.fail["DeleteProduct"] = true
	require.Error(t, s.Delete(ctx, "p2"))
	assert.NotNil(t, s.Get("p2"))
}

func TestProductRealtimeReconciliation(t *testing.T) {
	s := NewProductStore(newFakeClient())

	a := &catalog.Product{ID: "a", Title: "A", Category: "Tees"}
	b := &catalog.Product{ID: "b", Title: "B", Category: "Hats"}
	s.applyEvent(productEvent(t, events.KindInsert, a, nil))
	s.applyEvent(productEvent(t, events.KindInsert, b, nil))
	require.Equal(t, []string{"b", "a"}, ids(s.Products()))

	changed := a.Clone()
	changed.Title = "A2"
	s.applyEvent(productEvent(t, events.KindUpdate, changed, a))
	assert.Equal(t, "A2", s.Get("a").Title)

	// An update for an unknown id does not insert.
	s.applyEvent(productEvent(t, events.KindUpdate, &catalog.Product{ID: "ghost", Title: "G", Category: "X"}, nil))
	assert.Nil(t, s.Get("ghost"))

	s.applyEvent(productEvent(t, events.KindDelete, nil, b))
	assert.Equal(t, []string{"a"}, ids(s.Products()))

	s.applyEvent(events.ChangeEvent{Table: events.TableProducts, Kind: events.KindInsert, New: []byte("{not json")})
	assert.Equal(t, []string{"a"}, ids(s.Products()))
}

func TestProductFollow(t *testing.T) {
	client := newFakeClient()
	s := NewProductStore(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := s.Follow(ctx)
	require.NoError(t, err)

	// Events for other tables on the same feed are skipped.
	client.feed <- contentEvent(t, events.KindInsert, catalog.KeyHeroTitle, "x")
	client.feed <- productEvent(t, events.KindInsert, &catalog.Product{ID: "rt", Title: "Live", Category: "Tees"}, nil)

	require.Eventually(t, func() bool { return s.Get("rt") != nil }, time.Second, 5*time.Millisecond)
	assert.Len(t, s.Products(), 1)
}

func TestProductViews(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{
		{ID: "1", Title: "Hoodie", Category: "Hoodies"},
		{ID: "2", Title: "Tee", Category: "Tees"},
		{ID: "3", Title: "Star", Category: "Hoodies", IsFeatured: true},
		{ID: "4", Title: "Zip", Category: "Hoodies"},
	}
	s := NewProductStore(client)
	s.Load(context.Background())

	assert.Equal(t, []string{"1", "2", "4"}, ids(s.FilteredByCategory(catalog.AllCategories)))
	assert.Equal(t, []string{"1", "4"}, ids(s.FilteredByCategory("Hoodies")))
	assert.Empty(t, s.FilteredByCategory("Socks"))
	assert.Equal(t, []string{"3"}, ids(s.Featured()))
	assert.Equal(t, []string{catalog.AllCategories, "Hoodies", "Tees"}, s.Categories())
}

func TestProductImportSpreadsheet(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "old", Title: "Old", Category: "Tees"}}
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))
	ctx := context.Background()
	s.Load(ctx)

	sheet := "Title,Description,Category,Images,Purchase_Link,Shop_Link,Is_Featured\n" +
		"Hoodie,Warm,Hoodies,\"https://img/1.jpg, https://img/2.jpg\",https://buy/1,,có\n" +
		"Tee,,Tees,,,https://shop/2,\n" +
		"Cap,Snapback,Hats,https://img/3.jpg,,,false\n"

	created, err := s.ImportSpreadsheet(ctx, "products.csv", strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, created, 3)

	products := s.Products()
	require.Len(t, products, 4)
	assert.Equal(t, []string{created[0].ID, created[1].ID, created[2].ID, "old"}, ids(products))

	hoodie := products[0]
	assert.Equal(t, "Hoodie", hoodie.Title)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, hoodie.Images)
	require.NotNil(t, hoodie.PurchaseLink)
	assert.Equal(t, "https://buy/1", *hoodie.PurchaseLink)
	assert.True(t, hoodie.IsFeatured)
	assert.Nil(t, products[1].PurchaseLink)
	require.NotNil(t, products[1].ShopLink)
	assert.False(t, products[2].IsFeatured)

	assert.Equal(t, "Đã import 3 sản phẩm", rec.Last().Message)
	assert.Equal(t, 1, client.count("InsertProducts"))
}

func TestProductImportMissingColumnsSendsNothing(t *testing.T) {
	client := newFakeClient()
	rec := &notify.Recorder{}
	s := NewProductStore(client, WithNotifier(rec))

	_, err := s.ImportSpreadsheet(context.Background(), "products.csv", strings.NewReader("title,description\nTee,Soft\n"))
	require.ErrorIs(t, err, spreadsheet.ErrMissingColumns)
	assert.Zero(t, client.count("InsertProducts"))
	assert.Equal(t, notify.Failure(notify.TitleFormatError, notify.MsgImportMissingCols), rec.Last())
}

func TestProductBulkImportKeepsResponseOrderAfterEchoes(t *testing.T) {
	client := newFakeClient()
	client.products = []*catalog.Product{{ID: "old", Title: "Old", Category: "Tees"}}
	s := NewProductStore(client)
	ctx := context.Background()
	s.Load(ctx)

	// Realtime inserts for part of the batch land before the response.
	client.echoInserts = func(rows []*catalog.Product) {
		for _, p := range rows[:2] {
			s.applyEvent(productEvent(t, events.KindInsert, p, nil))
		}
	}

	created, err := s.BulkImport(ctx, []catalog.ProductDraft{
		{Title: "A", Category: "X"},
		{Title: "B", Category: "Y"},
		{Title: "C", Category: "Z"},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	assert.Equal(t, []string{created[0].ID, created[1].ID, created[2].ID, "old"}, ids(s.Products()))
}

func TestProductBulkImportFailureIsAtomic(t *testing.T) {
	client := newFakeClient()
	client.fail["InsertProducts"] = true
	s := NewProductStore(client)

	_, err := s.BulkImport(context.Background(), []catalog.ProductDraft{{Title: "A", Category: "X"}, {Title: "B", Category: "Y"}})
	require.Error(t, err)
	assert.Empty(t, s.Products())

	_, err = s.BulkImport(context.Background(), nil)
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestSettingsStore(t *testing.T) {
	client := newFakeClient()
	rec := &notify.Recorder{}
	s := NewSettingsStore(client, WithNotifier(rec))
	ctx := context.Background()

	var seen []string
	s.OnChange(func(ws *catalog.WebsiteSettings) {
		if ws == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, ws.ActiveRedirect())
	})

	s.Load(ctx)
	assert.Nil(t, s.Current())
	assert.Equal(t, "", s.RedirectURL())

	require.NoError(t, s.Save(ctx, catalog.SettingsPatch{RedirectURL: catalog.StringPtr(" https://x.test ")}))
	assert.Equal(t, "https://x.test", s.RedirectURL())
	assert.Equal(t, catalog.DefaultSiteTitle, s.Current().SiteTitle)
	assert.Equal(t, notify.Success(notify.MsgSettingsUpdated), rec.Last())

	require.NoError(t, s.Save(ctx, catalog.SettingsPatch{RedirectURL: catalog.StringPtr("")}))
	assert.Equal(t, "", s.RedirectURL())

	evt, err := events.NewChangeEvent(events.TableSettings, events.KindUpdate,
		&catalog.WebsiteSettings{ID: "s1", RedirectURL: catalog.StringPtr("https://y.test")}, nil)
	require.NoError(t, err)
	s.apply(evt)
	assert.Equal(t, "https://y.test", s.RedirectURL())

	assert.Equal(t, []string{"", "https://x.test", "", "https://y.test"}, seen)

	client.fail["SaveSettings"] = true
	require.Error(t, s.Save(ctx, catalog.SettingsPatch{SiteTitle: catalog.StringPtr("x")}))
	assert.Equal(t, notify.Failure(notify.TitleError, notify.MsgSettingsUpdateFailed), rec.Last())
}

func ids(products []*catalog.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
