package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

// ErrFeedClosed is returned by Subscribe after Shutdown.
var ErrFeedClosed = errors.New("messaging: change feed closed")

type feedSubscriber struct {
	tables map[events.Table]struct{} // empty means every table
	ch     chan events.ChangeEvent
	closed atomic.Bool
}

func (s *feedSubscriber) wants(table events.Table) bool {
	if len(s.tables) == 0 {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// ChangeFeed is the in-process topic feed every repository publishes into.
// Subscribers with full buffers lose events instead of stalling writers.
type ChangeFeed struct {
	mu          sync.RWMutex
	subscribers map[*feedSubscriber]struct{}
	buffer      int
	closed      atomic.Bool
	dropped     atomic.Int64
	logger      *logging.ChanneledLogger
}

var (
	_ Publisher  = (*ChangeFeed)(nil)
	_ Subscriber = (*ChangeFeed)(nil)
)

// NewChangeFeed creates a feed whose subscribers each buffer up to buffer events.
func NewChangeFeed(buffer int, logger *logging.ChanneledLogger) *ChangeFeed {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChangeFeed{
		subscribers: make(map[*feedSubscriber]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Publish delivers evt to every subscriber of its table without blocking.
func (f *ChangeFeed) Publish(evt events.ChangeEvent) {
	if f.closed.Load() {
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	delivered := 0
	for sub := range f.subscribers {
		if sub.closed.Load() || !sub.wants(evt.Table) {
			continue
		}
		select {
		case sub.ch <- evt:
			delivered++
		default:
			f.dropped.Add(1)
			f.logger.Realtime().Warn("Change feed subscriber full, event dropped",
				"table", evt.Table, "kind", evt.Kind)
		}
	}
	f.logger.Realtime().Debug("Change event published",
		"table", evt.Table, "kind", evt.Kind, "subscribers", delivered)
}

// Subscribe registers a subscriber for tables until ctx is done.
func (f *ChangeFeed) Subscribe(ctx context.Context, tables ...events.Table) (<-chan events.ChangeEvent, error) {
	if f.closed.Load() {
		return nil, ErrFeedClosed
	}

	sub := &feedSubscriber{
		tables: make(map[events.Table]struct{}, len(tables)),
		ch:     make(chan events.ChangeEvent, f.buffer),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	f.mu.Lock()
	if f.closed.Load() {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	f.subscribers[sub] = struct{}{}
	count := len(f.subscribers)
	f.mu.Unlock()

	f.logger.Realtime().Debug("Change feed subscriber registered", "tables", tables, "subscribers", count)

	go func() {
		<-ctx.Done()
		f.remove(sub)
	}()

	return sub.ch, nil
}

func (f *ChangeFeed) remove(sub *feedSubscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.subscribers[sub]; !ok {
		return
	}
	delete(f.subscribers, sub)
	if sub.closed.CompareAndSwap(false, true) {
		close(sub.ch)
	}
	f.logger.Realtime().Debug("Change feed subscriber unregistered", "subscribers", len(f.subscribers))
}

// SubscriberCount returns the number of live subscribers.
func (f *ChangeFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Dropped returns how many events were discarded for full subscribers.
func (f *ChangeFeed) Dropped() int64 {
	return f.dropped.Load()
}

// Shutdown closes every subscriber. Later publishes are ignored.
func (f *ChangeFeed) Shutdown() {
	if !f.closed.CompareAndSwap(false, true) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subscribers {
		if sub.closed.CompareAndSwap(false, true) {
			close(sub.ch)
		}
	}
	f.subscribers = make(map[*feedSubscriber]struct{})
}

// FormatSSE renders evt as a Server-Sent Events frame named after its table.
func FormatSSE(evt events.ChangeEvent) (string, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal change event: %w", err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", evt.Table, payload), nil
}
