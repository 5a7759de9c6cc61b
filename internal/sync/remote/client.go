// Package remote is the sync layer's view of the backend: collection CRUD,
// the realtime change feed and the admin session. Local talks to an
// in-process container; HTTP talks to a running server.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
)

var (
	// ErrInvalidCredentials is returned by SignIn for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrNotAuthenticated is returned by mutations without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session is the signed-in admin.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthEventKind names an auth state transition.
type AuthEventKind string

const (
	SignedIn  AuthEventKind = "SIGNED_IN"
	SignedOut AuthEventKind = "SIGNED_OUT"
)

// AuthEvent reports a session change. Session is nil for SignedOut.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}

// Client is everything the stores need from the backend.
type Client interface {
	ListContent(ctx context.Context) ([]*catalog.ContentItem, error)
	UpsertContent(ctx context.Context, key, value string) (*catalog.ContentItem, error)

	ListProducts(ctx context.Context) ([]*catalog.Product, error)
	InsertProduct(ctx context.Context, draft catalog.ProductDraft) (*catalog.Product, error)
	InsertProducts(ctx context.Context, drafts []catalog.ProductDraft) ([]*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*catalog.WebsiteSettings, error)
	SaveSettings(ctx context.Context, patch catalog.SettingsPatch) (*catalog.WebsiteSettings, error)

	// Subscribe streams changes for tables (all when empty) until ctx is
	// done; the channel is closed afterwards.
	Subscribe(ctx context.Context, tables ...events.Table) (<-chan events.ChangeEvent, error)

	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	// OnAuthChange registers fn for every later session change and returns
	// a function that removes it.
	OnAuthChange(fn func(AuthEvent)) (unsubscribe func())
}
