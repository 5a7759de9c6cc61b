// Package messaging defines the realtime change feed and its transports.
package messaging

import (
	"context"

	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
)

// Publisher accepts committed row changes.
type Publisher interface {
	Publish(evt events.ChangeEvent)
}

// Subscriber hands out filtered change streams. The returned channel is
// closed when ctx is done or the feed shuts down.
type Subscriber interface {
	Subscribe(ctx context.Context, tables ...events.Table) (<-chan events.ChangeEvent, error)
}
