// Package session composes the content, product and settings stores with
// the auth gate into one editing session: edit mode, category selection,
// auto-redirect for anonymous visitors and share links.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/sync/authgate"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
	"github.com/AtRiskMedia/storefront-go/internal/sync/store"
	"golang.org/x/sync/errgroup"
)

// ErrNotAdmin is returned when a viewer without a session asks for edit mode.
var ErrNotAdmin = errors.New("edit mode requires a signed-in admin")

// Mode is the edit-mode state.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// Navigator performs the auto-redirect.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Clipboard receives copied share links.
type Clipboard interface {
	WriteText(text string) error
}

type options struct {
	baseURL   string
	navigator Navigator
	clipboard Clipboard
	logger    *slog.Logger
	notifier  notify.Notifier
}

type Option func(*options)

// WithBaseURL sets the public storefront URL used for share links.
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = u } }

func WithNavigator(n Navigator) Option { return func(o *options) { o.navigator = n } }

func WithClipboard(c Clipboard) Option { return func(o *options) { o.clipboard = c } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithNotifier(n notify.Notifier) Option { return func(o *options) { o.notifier = n } }

// Session owns one viewer's state. Nothing in it is global; two sessions
// over the same client are independent.
type Session struct {
	Content  *store.ContentStore
	Products *store.ProductStore
	Settings *store.SettingsStore
	Auth     *authgate.Gate

	opts options

	mu           sync.Mutex
	mode         Mode
	category     string
	started      bool
	redirectedTo string

	cancel    context.CancelFunc
	followers []<-chan struct{}
	closeOnce sync.Once
}

// New builds the stores and the gate over client. Call Start to load.
func New(client remote.Client, opts ...Option) *Session {
	o := options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(&o)
	}

	storeOpts := []store.Option{store.WithLogger(o.logger), store.WithNotifier(o.notifier)}
	s := &Session{
		Content:  store.NewContentStore(client, storeOpts...),
		Products: store.NewProductStore(client, storeOpts...),
		Settings: store.NewSettingsStore(client, storeOpts...),
		Auth:     authgate.New(client, authgate.WithLogger(o.logger), authgate.WithNotifier(o.notifier)),
		opts:     o,
		category: catalog.AllCategories,
	}

	s.Auth.OnChange(s.authChanged)
	s.Settings.OnChange(func(*catalog.WebsiteSettings) { s.checkRedirect() })
	return s
}

// Start loads the session, content, products and settings concurrently,
// then subscribes the stores to realtime changes. Load failures are
// reported as notices; only a failed subscription is returned.
func (s *Session) Start(ctx context.Context) error {
	loads, loadCtx := errgroup.WithContext(ctx)
	loads.Go(func() error { s.Auth.Init(loadCtx); return nil })
	loads.Go(func() error { s.Content.Load(loadCtx); return nil })
	loads.Go(func() error { s.Products.Load(loadCtx); return nil })
	loads.Go(func() error { s.Settings.Load(loadCtx); return nil })
	_ = loads.Wait()

	subCtx, cancel := context.WithCancel(ctx)
	var followers []<-chan struct{}
	for _, follow := range []func(context.Context) (<-chan struct{}, error){
		s.Content.Follow,
		s.Products.Follow,
		s.Settings.Follow,
	} {
		done, err := follow(subCtx)
		if err != nil {
			cancel()
			s.opts.logger.Error("Realtime subscription failed", "error", err.Error())
			return err
		}
		followers = append(followers, done)
	}

	s.mu.Lock()
	s.cancel = cancel
	s.followers = followers
	s.started = true
	s.mu.Unlock()

	s.opts.logger.Info("Session started", "authenticated", s.Auth.IsAuthenticated(), "products", len(s.Products.Products()))
	s.checkRedirect()
	return nil
}

// Close ends the realtime subscriptions and the auth listener. Calls
// already in flight run to completion.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		cancel, followers := s.cancel, s.followers
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		for _, done := range followers {
			<-done
		}
		s.Auth.Close()
	})
}

// Mode reports the edit-mode state.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) IsEditMode() bool { return s.Mode() == Editing }

func (s *Session) IsAuthenticated() bool { return s.Auth.IsAuthenticated() }

// SetEditMode switches modes. Entering edit mode needs an admin; leaving
// it always succeeds.
func (s *Session) SetEditMode(on bool) error {
	if on && !s.Auth.IsAuthenticated() {
		return ErrNotAdmin
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.mode = Editing
	} else {
		s.mode = Viewing
	}
	return nil
}

// ToggleEditMode flips the mode and returns the new one.
func (s *Session) ToggleEditMode() (Mode, error) {
	next := !s.IsEditMode()
	if err := s.SetEditMode(next); err != nil {
		return s.Mode(), err
	}
	return s.Mode(), nil
}

func (s *Session) SelectedCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// SetSelectedCategory picks the category for FilteredProducts. "" selects
// every category.
func (s *Session) SetSelectedCategory(category string) {
	if category == "" {
		category = catalog.AllCategories
	}
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()
}

func (s *Session) FilteredProducts() []*catalog.Product {
	return s.Products.FilteredByCategory(s.SelectedCategory())
}

func (s *Session) FeaturedProducts() []*catalog.Product { return s.Products.Featured() }

func (s *Session) Categories() []string { return s.Products.Categories() }

// ContentValue returns the cached text for key, "" when unknown.
func (s *Session) ContentValue(key string) string {
	v, _ := s.Content.Get(key)
	return v
}

// IsLoading reports whether the content or product load is in flight.
func (s *Session) IsLoading() bool {
	return s.Content.Loading() || s.Products.Loading()
}

func (s *Session) UpdateContent(ctx context.Context, key, value string) error {
	return s.Content.Update(ctx, key, value)
}

func (s *Session) AddProduct(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	return s.Products.Add(ctx, draft)
}

func (s *Session) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) error {
	return s.Products.Update(ctx, id, patch)
}

func (s *Session) DeleteProduct(ctx context.Context, id string) error {
	return s.Products.Delete(ctx, id)
}

func (s *Session) BulkImportProducts(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	return s.Products.BulkImport(ctx, drafts)
}

func (s *Session) ImportSpreadsheet(ctx context.Context, filename string, r io.Reader) ([]*catalog.Product, error) {
	return s.Products.ImportSpreadsheet(ctx, filename, r)
}

// UpdateWebsiteSettings inserts the settings row when absent and updates it
// otherwise.
func (s *Session) UpdateWebsiteSettings(ctx context.Context, patch catalog.SettingsPatch) error {
	return s.Settings.Save(ctx, patch)
}

// Refetch reloads content and products.
func (s *Session) Refetch(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.Content.Refetch(gctx); return nil })
	g.Go(func() error { s.Products.Refetch(gctx); return nil })
	_ = g.Wait()
}

func (s *Session) SignIn(ctx context.Context, email, password string) bool {
	return s.Auth.SignIn(ctx, email, password)
}

func (s *Session) SignUp(ctx context.Context, email, password string) bool {
	return s.Auth.SignUp(ctx, email, password)
}

func (s *Session) SignOut(ctx context.Context) error {
	return s.Auth.SignOut(ctx)
}

// GenerateShareLink builds the public link for a product or the shop;
// any other kind yields the base URL.
func (s *Session) GenerateShareLink(kind, productID string) string {
	return catalog.ShareLink(s.opts.baseURL, kind, productID)
}

// CopyShareLink generates the link and writes it to the configured
// clipboard, reporting the outcome as a notice.
func (s *Session) CopyShareLink(kind, productID string) (string, error) {
	link := s.GenerateShareLink(kind, productID)
	if s.opts.clipboard == nil {
		return link, nil
	}
	if err := s.opts.clipboard.WriteText(link); err != nil {
		s.opts.notifier.Notify(notify.Failure(notify.TitleError, notify.MsgLinkCopyFailed))
		return link, err
	}
	s.opts.notifier.Notify(notify.Notice{Level: notify.LevelSuccess, Title: notify.TitleCopied, Message: notify.MsgLinkCopied})
	return link, nil
}

func (s *Session) authChanged(authenticated bool) {
	if !authenticated {
		s.mu.Lock()
		s.mode = Viewing
		s.mu.Unlock()
	}
	s.checkRedirect()
}

// checkRedirect navigates anonymous viewers to the configured redirect
// URL, once per distinct URL. The condition resets when it stops holding.
func (s *Session) checkRedirect() {
	target := s.Settings.RedirectURL()
	authed := s.Auth.IsAuthenticated()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	if target == "" || authed {
		s.redirectedTo = ""
		s.mu.Unlock()
		return
	}
	if s.redirectedTo == target {
		s.mu.Unlock()
		return
	}
	s.redirectedTo = target
	nav := s.opts.navigator
	s.mu.Unlock()

	s.opts.logger.Info("Redirecting anonymous viewer", "url", target)
	if nav != nil {
		nav.Navigate(target)
	}
}
