// Package authgate tracks whether the viewer is a signed-in admin and
// wraps sign-in, sign-up and sign-out with user-facing notices.
package authgate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

// Gate mirrors the remote session. IsAuthenticated changes only through
// auth-state events from the client.
type Gate struct {
	client   remote.Client
	logger   *slog.Logger
	notifier notify.Notifier

	mu            sync.RWMutex
	authenticated bool
	email         string
	listeners     []func(bool)
	unsubscribe   func()
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithNotifier(n notify.Notifier) Option {
	return func(g *Gate) { g.notifier = n }
}

// New registers for auth changes immediately; call Init to read the
// current session.
func New(client remote.Client, opts ...Option) *Gate {
	g := &Gate{
		client:   client,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.unsubscribe = client.OnAuthChange(g.handle)
	return g
}

// Init reads the current session. A lookup failure leaves the viewer
// anonymous.
func (g *Gate) Init(ctx context.Context) {
	session, err := g.client.Session(ctx)
	if err != nil {
		g.logger.Warn("Session lookup failed", "error", err.Error())
		return
	}
	if session != nil {
		g.handle(remote.AuthEvent{Kind: remote.SignedIn, Session: session})
	}
}

func (g *Gate) handle(evt remote.AuthEvent) {
	authed := evt.Kind == remote.SignedIn && evt.Session != nil

	g.mu.Lock()
	changed := g.authenticated != authed
	g.authenticated = authed
	g.email = ""
	if authed {
		g.email = evt.Session.Email
	}
	listeners := slices.Clone(g.listeners)
	g.mu.Unlock()

	if !changed {
		return
	}
	g.logger.Info("Auth state changed", "authenticated", authed)
	for _, fn := range listeners {
		fn(authed)
	}
}

// IsAuthenticated reports whether an admin is signed in.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Email is the signed-in admin's address, "" when anonymous.
func (g *Gate) Email() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.email
}

// OnChange registers fn for every transition of IsAuthenticated.
func (g *Gate) OnChange(fn func(authenticated bool)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// SignIn never returns an error; the outcome is the result and a notice.
func (g *Gate) SignIn(ctx context.Context, email, password string) bool {
	if _, err := g.client.SignIn(ctx, email, password); err != nil {
		if errors.Is(err, remote.ErrInvalidCredentials) {
			g.logger.Info("Sign-in rejected", "email", email)
			g.notifier.Notify(notify.Failure(notify.TitleLoginError, notify.MsgInvalidCredentials))
		} else {
			g.logger.Error("Sign-in failed", "email", email, "error", err.Error())
			g.notifier.Notify(notify.Failure(notify.TitleError, notify.MsgSignInFailed))
		}
		return false
	}
	g.notifier.Notify(notify.Success(notify.MsgSignedIn))
	return true
}

// SignUp creates an admin account; confirmation arrives by email.
func (g *Gate) SignUp(ctx context.Context, email, password string) bool {
	if err := g.client.SignUp(ctx, email, password); err != nil {
		g.logger.Error("Sign-up failed", "email", email, "error", err.Error())
		g.notifier.Notify(notify.Failure(notify.TitleSignUpError, notify.MsgSignUpFailed))
		return false
	}
	g.notifier.Notify(notify.Success(notify.MsgSignedUp))
	return true
}

// SignOut asks the client to end the session. The flag clears when the
// resulting auth event arrives.
func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.client.SignOut(ctx); err != nil {
		g.logger.Error("Sign-out failed", "error", err.Error())
		g.notifier.Notify(notify.Failure(notify.TitleError, notify.MsgSignOutFailed))
		return err
	}
	g.notifier.Notify(notify.Success(notify.MsgSignedOut))
	return nil
}

// Close stops listening for auth changes.
func (g *Gate) Close() {
	g.unsubscribe()
}
