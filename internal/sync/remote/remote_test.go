package remote

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/dbtest"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noMail struct{}

func (noMail) Enabled() bool { return false }

func (noMail) SendSignupConfirmation(string, string) error { return nil }

const (
	adminEmail    = "owner@shop.vn"
	adminPassword = "secret1"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	return newContainerWithSignup(t, true)
}

func newContainerWithSignup(t *testing.T, allowSignup bool) *container.Container {
	t.Helper()
	c := container.NewContainer(dbtest.Open(t), logging.NewDiscardLogger(), container.Options{
		Mailer:   noMail{},
		MediaDir: t.TempDir(),
		Auth: &services.AuthConfig{
			JWTSecret:     "remote-test-secret",
			TokenTTL:      time.Hour,
			PublicBaseURL: "https://shop.test",
			AllowSignup:   allowSignup,
		},
	})
	t.Cleanup(c.Close)
	return c
}

func newHTTP(t *testing.T) (*HTTP, *container.Container) {
	t.Helper()
	return serveHTTP(t, newContainer(t))
}

func serveHTTP(t *testing.T, c *container.Container) (*HTTP, *container.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(routes.SetupRoutes(c))
	t.Cleanup(srv.Close)

	client, err := NewHTTP(srv.URL)
	require.NoError(t, err)
	return client, c
}

// exerciseClient runs the behavior both adapters share.
func exerciseClient(t *testing.T, client Client) {
	ctx := context.Background()

	var seen []AuthEvent
	unsubscribe := client.OnAuthChange(func(evt AuthEvent) { seen = append(seen, evt) })
	defer unsubscribe()

	session, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = client.InsertProduct(ctx, catalog.ProductDraft{Title: "Hoodie", Category: "Hoodies"})
	require.Error(t, err)

	_, err = client.SignIn(ctx, adminEmail, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	session, err = client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, adminEmail, session.Email)
	assert.NotEmpty(t, session.Token)
	require.Len(t, seen, 1)
	assert.Equal(t, SignedIn, seen[0].Kind)

	created, err := client.InsertProduct(ctx, catalog.ProductDraft{Title: "Hoodie", Category: "Hoodies"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = client.InsertProduct(ctx, catalog.ProductDraft{Title: " ", Category: "Hoodies"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Invalid), "got %v", err)

	batch, err := client.InsertProducts(ctx, []catalog.ProductDraft{
		{Title: "Tee", Category: "Tees"},
		{Title: "Cap", Category: "Hats", IsFeatured: true},
	})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	updated, err := client.UpdateProduct(ctx, created.ID, catalog.ProductPatch{Title: catalog.StringPtr("Zip Hoodie")})
	require.NoError(t, err)
	assert.Equal(t, "Zip Hoodie", updated.Title)

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	require.NoError(t, client.DeleteProduct(ctx, created.ID))
	err = client.DeleteProduct(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)

	item, err := client.UpsertContent(ctx, catalog.KeyHeroTitle, "Sale")
	require.NoError(t, err)
	assert.Equal(t, "Sale", item.Value)
	content, err := client.ListContent(ctx)
	require.NoError(t, err)
	assert.Len(t, content, 1)

	settings, err := client.SaveSettings(ctx, catalog.SettingsPatch{RedirectURL: catalog.StringPtr("https://example.com")})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", settings.ActiveRedirect())
	settings, err = client.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", settings.ActiveRedirect())

	require.NoError(t, client.SignOut(ctx))
	session, err = client.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
	require.Len(t, seen, 2)
	assert.Equal(t, SignedOut, seen[1].Kind)

	_, err = client.UpsertContent(ctx, catalog.KeyHeroTitle, "Again")
	require.Error(t, err)
}

func TestLocalClient(t *testing.T) {
	exerciseClient(t, NewLocal(newContainer(t)))
}

func TestHTTPClient(t *testing.T) {
	client, _ := newHTTP(t)
	exerciseClient(t, client)
}

func TestLocalSessionExpires(t *testing.T) {
	client := NewLocal(newContainer(t))
	ctx := context.Background()
	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	_, err := client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	client.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	session, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestLocalMutationWithoutSession(t *testing.T) {
	client := NewLocal(newContainer(t))
	_, err := client.SaveSettings(context.Background(), catalog.SettingsPatch{SiteTitle: catalog.StringPtr("x")})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

// exerciseClosedSignup checks that a stranger cannot sign up into an
// admin account and edit the shop.
func exerciseClosedSignup(t *testing.T, client Client, c *container.Container) {
	ctx := context.Background()

	err := client.SignUp(ctx, "attacker@evil.test", adminPassword)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = client.SignIn(ctx, "attacker@evil.test", adminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = client.UpsertContent(ctx, catalog.KeyHeroTitle, "PWNED")
	require.Error(t, err)
	items, err := c.ContentService.List(ctx)
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "PWNED", item.Value)
	}
}

func TestLocalSignupClosed(t *testing.T) {
	c := newContainerWithSignup(t, false)
	client := NewLocal(c)
	exerciseClosedSignup(t, client, c)

	_, err := client.UpsertContent(context.Background(), catalog.KeyHeroTitle, "PWNED")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestHTTPSignupClosed(t *testing.T) {
	client, c := serveHTTP(t, newContainerWithSignup(t, false))
	exerciseClosedSignup(t, client, c)

	_, err := client.UpsertContent(context.Background(), catalog.KeyHeroTitle, "PWNED")
	assert.True(t, apperr.Is(err, apperr.Unauthorized), "got %v", err)
}

func TestLocalSubscribe(t *testing.T) {
	c := newContainer(t)
	client := NewLocal(c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := client.Subscribe(ctx, events.TableProducts)
	require.NoError(t, err)

	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	_, err = client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	_, err = client.UpsertContent(ctx, catalog.KeyHeroTitle, "ignored by filter")
	require.NoError(t, err)
	created, err := client.InsertProduct(ctx, catalog.ProductDraft{Title: "Tee", Category: "Tees"})
	require.NoError(t, err)

	select {
	case evt := <-feed:
		assert.Equal(t, events.TableProducts, evt.Table)
		assert.Equal(t, events.KindInsert, evt.Kind)
		change, err := events.Decode[catalog.Product](evt)
		require.NoError(t, err)
		assert.Equal(t, created.ID, change.New.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no change event")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-feed
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHTTPSubscribe(t *testing.T) {
	client, _ := newHTTP(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := client.Subscribe(ctx, events.TableContent)
	require.NoError(t, err)

	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	_, err = client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	// The server registers the subscriber after the upgrade; retry the
	// write until an event makes it through.
	var evt events.ChangeEvent
	require.Eventually(t, func() bool {
		if _, err := client.UpsertContent(ctx, catalog.KeyHeroTitle, "Live"); err != nil {
			return false
		}
		select {
		case evt = <-feed:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, events.TableContent, evt.Table)
	change, err := events.Decode[catalog.ContentItem](evt)
	require.NoError(t, err)
	assert.Equal(t, "Live", change.New.Value)
}

func TestHTTPSubscribeEndsWhenServerDrops(t *testing.T) {
	client, c := newHTTP(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := client.Subscribe(ctx, events.TableContent)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.Feed.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), client.feeds.Load())

	c.Feed.Shutdown()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-feed:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	// ctx is still live; the connection closer must not wait for it.
	require.Eventually(t, func() bool { return client.feeds.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, ctx.Err())
}

func TestHTTPRejectsBadEndpoint(t *testing.T) {
	_, err := NewHTTP("localhost:8080")
	require.Error(t, err)
	_, err = NewHTTP("ftp://shop.test")
	require.Error(t, err)
}

func TestHTTPImportAndTemplate(t *testing.T) {
	client, _ := newHTTP(t)
	ctx := context.Background()

	var tmpl bytes.Buffer
	require.NoError(t, client.DownloadTemplate(ctx, "csv", &tmpl))
	assert.Contains(t, tmpl.String(), "title")

	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	_, err := client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	csv := "title,description,category,images,purchase_link,shop_link,is_featured\n" +
		"Tee,Soft,Tees,,,,false\n" +
		"Cap,,Hats,,,,true\n"
	products, err := client.ImportSpreadsheet(ctx, "products.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestHTTPWithSessionRestoresToken(t *testing.T) {
	client, c := newHTTP(t)
	ctx := context.Background()
	require.NoError(t, client.SignUp(ctx, adminEmail, adminPassword))
	session, err := client.SignIn(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	restored, err := NewHTTP(client.endpoint.String(), WithSession(session))
	require.NoError(t, err)
	current, err := restored.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, adminEmail, current.Email)

	_, err = restored.InsertProduct(ctx, catalog.ProductDraft{Title: "Tee", Category: "Tees"})
	require.NoError(t, err)
	products, err := c.CatalogService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	bogus, err := NewHTTP(client.endpoint.String(), WithSession(&Session{Token: "garbage"}))
	require.NoError(t, err)
	current, err = bogus.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
