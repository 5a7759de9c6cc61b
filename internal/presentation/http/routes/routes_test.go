package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/dbtest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noMail struct{}

func (noMail) Enabled() bool { return false }

func (noMail) SendSignupConfirmation(string, string) error { return nil }

const testBaseURL = "https://shop.test"

func newTestAPI(t *testing.T) (*gin.Engine, *container.Container) {
	t.Helper()
	return newTestAPIWithSignup(t, true)
}

func newTestAPIWithSignup(t *testing.T, allowSignup bool) (*gin.Engine, *container.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := container.NewContainer(dbtest.Open(t), logging.NewDiscardLogger(), container.Options{
		Mailer:   noMail{},
		MediaDir: t.TempDir(),
		Auth: &services.AuthConfig{
			JWTSecret:     "routes-test-secret",
			TokenTTL:      time.Hour,
			PublicBaseURL: testBaseURL,
			AllowSignup:   allowSignup,
		},
	})
	t.Cleanup(c.Close)
	return SetupRoutes(c), c
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	creds := map[string]string{"email": "owner@shop.vn", "password": "secret1"}
	w := do(t, r, http.MethodPost, "/api/v1/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestAuthFlow(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "x@y.vn", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), services.MsgInvalidCredentials)

	token := login(t, r)

	w = do(t, r, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = do(t, r, http.MethodGet, "/api/v1/auth/session", "", nil)
	assert.Contains(t, w.Body.String(), `"user":null`)

	w = do(t, r, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "owner@shop.vn", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupClosed(t *testing.T) {
	r, c := newTestAPIWithSignup(t, false)
	creds := map[string]string{"email": "attacker@evil.test", "password": "secret1"}

	w := do(t, r, http.MethodPost, "/api/v1/auth/signup", "", creds)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), services.MsgSignupDisabled)

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", "", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/content/heroTitle", "", map[string]string{"value": "PWNED"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	items, err := c.ContentService.List(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "PWNED", item.Value)
	}
}

func TestProductCRUD(t *testing.T) {
	r, _ := newTestAPI(t)

	w := do(t, r, http.MethodPost, "/api/v1/products", "", catalog.ProductDraft{Title: "A", Category: "C"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r)

	w = do(t, r, http.MethodPost, "/api/v1/products", token, map[string]any{"title": "A"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/products", token, catalog.ProductDraft{Title: "Hoodie", Category: "Hoodies"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, r, http.MethodPatch, "/api/v1/products/"+created.ID, token, map[string]any{"is_featured": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_featured":true`)

	w = do(t, r, http.MethodPatch, "/api/v1/products/missing", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/products/bulk", token, map[string]any{
		"products": []catalog.ProductDraft{{Title: "B", Category: "Tees"}, {Title: "C", Category: "Hats"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	w = do(t, r, http.MethodDelete, "/api/v1/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/v1/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportAndTemplate(t *testing.T) {
	r, _ := newTestAPI(t)
	token := login(t, r)

	w := do(t, r, http.MethodGet, "/api/v1/products/import/template?format=csv", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "title")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products-template.csv")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("title,category\nA,Hoodies\nB,Tees\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestRootRedirectAndShare(t *testing.T) {
	r, _ := newTestAPI(t)
	token := login(t, r)

	w := do(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"categories"`)

	w = do(t, r, http.MethodPut, "/api/v1/settings", token, map[string]any{"redirect_url": "https://elsewhere.test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://elsewhere.test", w.Header().Get("Location"))

	w = do(t, r, http.MethodGet, "/", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/share?type=product&id=p1", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testBaseURL+"/?product=p1", w.Header().Get("Location"))

	w = do(t, r, http.MethodGet, "/share?type=shop", "", nil)
	assert.Equal(t, testBaseURL+"/?section=featured", w.Header().Get("Location"))
}

func TestContentAndStatus(t *testing.T) {
	r, _ := newTestAPI(t)
	token := login(t, r)

	w := do(t, r, http.MethodPut, "/api/v1/content/heroTitle", token, map[string]string{"value": "Xin chào"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/content", "", nil)
	assert.Contains(t, w.Body.String(), "Xin chào")

	w = do(t, r, http.MethodGet, "/api/v1/db/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":true`)

	w = do(t, r, http.MethodGet, "/api/v1/realtime/sse?tables=orders", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRealtimeSSE(t *testing.T) {
	r, _ := newTestAPI(t)
	token := login(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/realtime/sse?tables=products", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	w := do(t, r, http.MethodPost, "/api/v1/products", token, catalog.ProductDraft{Title: "Live", Category: "Tees"})
	require.Equal(t, http.StatusCreated, w.Code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: products") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"kind":"INSERT"`)
	assert.Contains(t, data, "Live")
}
