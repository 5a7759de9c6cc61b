// Package store holds the client-side caches of the storefront: editable
// content, the product catalog and the website settings. Each store loads
// from a remote.Client, applies mutations remotely before touching its
// cache, and reconciles realtime change events through the same path.
package store

import (
	"context"
	"io"
	"log/slog"

	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

// Option configures a store.
type Option func(*base)

// WithLogger sets the store's logger. Stores log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) { b.logger = logger }
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(n notify.Notifier) Option {
	return func(b *base) { b.notifier = n }
}

// base is embedded by every store.
type base struct {
	client   remote.Client
	logger   *slog.Logger
	notifier notify.Notifier
}

func newBase(client remote.Client, opts []Option) base {
	b := base{
		client:   client,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) success(msg string) {
	b.notifier.Notify(notify.Success(msg))
}

func (b *base) failure(msg string) {
	b.notifier.Notify(notify.Failure(notify.TitleError, msg))
}

// follow subscribes to table and feeds every event to apply on its own
// goroutine until ctx is done or the feed closes. done is closed when the
// goroutine exits.
func (b *base) follow(ctx context.Context, table events.Table, apply func(events.ChangeEvent)) (done <-chan struct{}, err error) {
	feed, err := b.client.Subscribe(ctx, table)
	if err != nil {
		return nil, err
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for evt := range feed {
			if evt.Table != table {
				continue
			}
			apply(evt)
		}
		b.logger.Debug("Realtime subscription ended", "table", table)
	}()
	return finished, nil
}
