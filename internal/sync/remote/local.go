package remote

import (
	"context"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
)

// Local serves the Client contract from services running in the same
// process. Mutations require a session, as they do over HTTP.
type Local struct {
	catalog  *services.CatalogService
	content  *services.ContentService
	settings *services.SettingsService
	auth     *services.AuthService
	feed     messaging.Subscriber
	state    authState
	now      func() time.Time
}

var _ Client = (*Local)(nil)

// NewLocal wraps the services of c.
func NewLocal(c *container.Container) *Local {
	return &Local{
		catalog:  c.CatalogService,
		content:  c.ContentService,
		settings: c.SettingsService,
		auth:     c.AuthService,
		feed:     c.Feed,
		now:      time.Now,
	}
}

func (l *Local) requireSession() error {
	token := l.state.token()
	if token == "" {
		return ErrNotAuthenticated
	}
	if _, err := l.auth.ValidateToken(token); err != nil {
		l.state.set(nil)
		return ErrNotAuthenticated
	}
	return nil
}

func (l *Local) ListContent(ctx context.Context) ([]*catalog.ContentItem, error) {
	return l.content.List(ctx)
}

func (l *Local) UpsertContent(ctx context.Context, key, value string) (*catalog.ContentItem, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return l.content.Upsert(ctx, key, value)
}

func (l *Local) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	return l.catalog.List(ctx)
}

func (l *Local) InsertProduct(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return l.catalog.Create(ctx, draft)
}

func (l *Local) InsertProducts(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return l.catalog.CreateMany(ctx, drafts)
}

func (l *Local) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (*catalog.Product, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return l.catalog.Update(ctx, id, patch)
}

func (l *Local) DeleteProduct(ctx context.Context, id string) error {
	if err := l.requireSession(); err != nil {
		return err
	}
	return l.catalog.Delete(ctx, id)
}

func (l *Local) GetSettings(ctx context.Context) (*catalog.WebsiteSettings, error) {
	return l.settings.Get(ctx)
}

func (l *Local) SaveSettings(ctx context.Context, patch catalog.SettingsPatch) (*catalog.WebsiteSettings, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}
	return l.settings.Save(ctx, patch)
}

func (l *Local) Subscribe(ctx context.Context, tables ...events.Table) (<-chan events.ChangeEvent, error) {
	return l.feed.Subscribe(ctx, tables...)
}

func (l *Local) Session(_ context.Context) (*Session, error) {
	l.state.expireIfStale(l.now())
	return l.state.current(), nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	result, err := l.auth.Login(ctx, email, password)
	if err != nil {
		return nil, mapAuthError(err)
	}
	session := &Session{
		UserID:    result.User.ID,
		Email:     result.User.Email,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
	l.state.set(session)
	return l.state.current(), nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) error {
	_, err := l.auth.SignUp(ctx, email, password)
	return err
}

func (l *Local) SignOut(_ context.Context) error {
	l.state.set(nil)
	return nil
}

func (l *Local) OnAuthChange(fn func(AuthEvent)) func() {
	return l.state.subscribe(fn)
}

// mapAuthError turns the backend's bad-credentials answer into
// ErrInvalidCredentials and leaves everything else alone.
func mapAuthError(err error) error {
	if apperr.Is(err, apperr.Unauthorized) && apperr.PublicMessage(err) == services.MsgInvalidCredentials {
		return ErrInvalidCredentials
	}
	return err
}
