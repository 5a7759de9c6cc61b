package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
)

const apiPrefix = "/api/v1"

// HTTP talks to a storefront server over its REST API and websocket feed.
type HTTP struct {
	rest     *resty.Client
	endpoint *url.URL
	dialer   *websocket.Dialer
	state    authState
	logger   *slog.Logger
	now      func() time.Time

	// feeds counts subscriptions whose goroutines are still running.
	feeds atomic.Int32
}

var _ Client = (*HTTP)(nil)

// HTTPOption configures NewHTTP.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(h *HTTP) { h.rest = resty.NewWithClient(hc).SetBaseURL(h.rest.BaseURL) }
}

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTP) { h.logger = logger }
}

// WithSession restores a previously issued session, e.g. from a token file.
// Session() verifies it against the server before trusting it.
func WithSession(s *Session) HTTPOption {
	return func(h *HTTP) {
		if s != nil && s.Token != "" {
			h.state.session = s
		}
	}
}

// NewHTTP creates a client for the server at endpoint (scheme and host,
// e.g. http://localhost:8080).
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", endpoint)
	}

	h := &HTTP{
		rest:     resty.New().SetBaseURL(u.String()),
		endpoint: u,
		dialer:   websocket.DefaultDialer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.rest.SetHeader("Accept", "application/json")
	return h, nil
}

// apiError is the server's error body.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// request starts a call carrying ctx and, when signed in, the bearer token.
func (h *HTTP) request(ctx context.Context) *resty.Request {
	req := h.rest.R().SetContext(ctx).SetError(&apiError{})
	if token := h.state.token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// check converts transport failures and error statuses into errors. A 401
// on an authenticated call drops the session.
func (h *HTTP) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		h.logger.Warn("Remote call failed", "op", op, "error", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := http.StatusText(resp.StatusCode())
	var fields map[string]string
	if body, ok := resp.Error().(*apiError); ok && body.Error != "" {
		msg = body.Error
		fields = body.Fields
	}
	rebuilt := apperr.FromStatus(resp.StatusCode(), msg)
	rebuilt.Fields = fields
	rebuilt.Err = fmt.Errorf("%s: status %d", op, resp.StatusCode())

	if resp.StatusCode() == http.StatusUnauthorized && h.state.token() != "" && op != "sign in" {
		h.state.set(nil)
	}
	h.logger.Debug("Remote call rejected", "op", op, "status", resp.StatusCode(), "error", msg)
	return rebuilt
}

func (h *HTTP) ListContent(ctx context.Context) ([]*catalog.ContentItem, error) {
	var out struct {
		Content []*catalog.ContentItem `json:"content"`
	}
	resp, err := h.request(ctx).SetResult(&out).Get(apiPrefix + "/content")
	if err := h.check(resp, err, "list content"); err != nil {
		return nil, err
	}
	return out.Content, nil
}

func (h *HTTP) UpsertContent(ctx context.Context, key, value string) (*catalog.ContentItem, error) {
	var out catalog.ContentItem
	resp, err := h.request(ctx).
		SetBody(map[string]string{"value": value}).
		SetResult(&out).
		Put(apiPrefix + "/content/" + url.PathEscape(key))
	if err := h.check(resp, err, "upsert content"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	var out struct {
		Products []*catalog.Product `json:"products"`
	}
	resp, err := h.request(ctx).SetResult(&out).Get(apiPrefix + "/products")
	if err := h.check(resp, err, "list products"); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (h *HTTP) InsertProduct(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	var out catalog.Product
	resp, err := h.request(ctx).SetBody(draft).SetResult(&out).Post(apiPrefix + "/products")
	if err := h.check(resp, err, "insert product"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) InsertProducts(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	var out struct {
		Products []*catalog.Product `json:"products"`
	}
	resp, err := h.request(ctx).
		SetBody(map[string]any{"products": drafts}).
		SetResult(&out).
		Post(apiPrefix + "/products/bulk")
	if err := h.check(resp, err, "insert products"); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (h *HTTP) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (*catalog.Product, error) {
	var out catalog.Product
	resp, err := h.request(ctx).SetBody(patch).SetResult(&out).Patch(apiPrefix + "/products/" + url.PathEscape(id))
	if err := h.check(resp, err, "update product"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) DeleteProduct(ctx context.Context, id string) error {
	resp, err := h.request(ctx).Delete(apiPrefix + "/products/" + url.PathEscape(id))
	return h.check(resp, err, "delete product")
}

func (h *HTTP) GetSettings(ctx context.Context) (*catalog.WebsiteSettings, error) {
	var out struct {
		Settings *catalog.WebsiteSettings `json:"settings"`
	}
	resp, err := h.request(ctx).SetResult(&out).Get(apiPrefix + "/settings")
	if err := h.check(resp, err, "get settings"); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

func (h *HTTP) SaveSettings(ctx context.Context, patch catalog.SettingsPatch) (*catalog.WebsiteSettings, error) {
	var out struct {
		Settings *catalog.WebsiteSettings `json:"settings"`
	}
	resp, err := h.request(ctx).SetBody(patch).SetResult(&out).Put(apiPrefix + "/settings")
	if err := h.check(resp, err, "save settings"); err != nil {
		return nil, err
	}
	return out.Settings, nil
}

// ImportSpreadsheet uploads a CSV or XLSX file to the server-side importer.
func (h *HTTP) ImportSpreadsheet(ctx context.Context, filename string, r io.Reader) ([]*catalog.Product, error) {
	var out struct {
		Products []*catalog.Product `json:"products"`
	}
	resp, err := h.request(ctx).
		SetFileReader("file", filename, r).
		SetResult(&out).
		Post(apiPrefix + "/products/import")
	if err := h.check(resp, err, "import spreadsheet"); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// DownloadTemplate writes the import template in format ("csv" or "xlsx") to w.
func (h *HTTP) DownloadTemplate(ctx context.Context, format string, w io.Writer) error {
	resp, err := h.request(ctx).
		SetQueryParam("format", format).
		SetDoNotParseResponse(true).
		Get(apiPrefix + "/products/import/template")
	if err != nil {
		return fmt.Errorf("download template: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		return apperr.FromStatus(resp.StatusCode(), "template download failed")
	}
	_, err = io.Copy(w, body)
	return err
}

// UploadImage sends a base64 data URL and returns the stored image URL.
func (h *HTTP) UploadImage(ctx context.Context, dataURL string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	resp, err := h.request(ctx).
		SetBody(map[string]string{"data": dataURL}).
		SetResult(&out).
		Post(apiPrefix + "/media/images")
	if err := h.check(resp, err, "upload image"); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Subscribe dials the websocket feed. The returned channel closes when ctx
// is done or the server drops the connection; there is no reconnect.
func (h *HTTP) Subscribe(ctx context.Context, tables ...events.Table) (<-chan events.ChangeEvent, error) {
	wsURL := *h.endpoint
	if wsURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	} else {
		wsURL.Scheme = "ws"
	}
	wsURL.Path = apiPrefix + "/realtime/ws"
	if len(tables) > 0 {
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = string(t)
		}
		wsURL.RawQuery = url.Values{"tables": {strings.Join(names, ",")}}.Encode()
	}

	conn, resp, err := h.dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("subscribe: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan events.ChangeEvent, 64)
	done := make(chan struct{})
	h.feeds.Add(1)
	go func() {
		defer h.feeds.Add(-1)
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn("Realtime connection lost", "error", err.Error())
				}
				return
			}
			var evt events.ChangeEvent
			if err := json.Unmarshal(payload, &evt); err != nil {
				h.logger.Warn("Discarding malformed change event", "error", err.Error())
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Session verifies the stored token with the server. A rejected or expired
// token signs the client out.
func (h *HTTP) Session(ctx context.Context) (*Session, error) {
	h.state.expireIfStale(h.now())
	if h.state.token() == "" {
		return nil, nil
	}

	var out struct {
		User *struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	resp, err := h.request(ctx).SetResult(&out).Get(apiPrefix + "/auth/session")
	if err := h.check(resp, err, "get session"); err != nil {
		return nil, err
	}
	if out.User == nil {
		h.state.set(nil)
		return nil, nil
	}
	return h.state.current(), nil
}

func (h *HTTP) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
		User      struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	resp, err := h.rest.R().SetContext(ctx).SetError(&apiError{}).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post(apiPrefix + "/auth/login")
	if err := h.check(resp, err, "sign in"); err != nil {
		var ae *apperr.AppError
		if errors.As(err, &ae) && ae.Kind == apperr.Unauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	h.state.set(&Session{UserID: out.User.ID, Email: out.User.Email, Token: out.Token, ExpiresAt: out.ExpiresAt})
	return h.state.current(), nil
}

func (h *HTTP) SignUp(ctx context.Context, email, password string) error {
	resp, err := h.rest.R().SetContext(ctx).SetError(&apiError{}).
		SetBody(map[string]string{"email": email, "password": password}).
		Post(apiPrefix + "/auth/signup")
	return h.check(resp, err, "sign up")
}

// SignOut clears the server cookie and the local session. The local
// session is dropped even when the server call fails.
func (h *HTTP) SignOut(ctx context.Context) error {
	resp, err := h.request(ctx).Post(apiPrefix + "/auth/logout")
	h.state.set(nil)
	return h.check(resp, err, "sign out")
}

func (h *HTTP) OnAuthChange(fn func(AuthEvent)) func() {
	return h.state.subscribe(fn)
}
