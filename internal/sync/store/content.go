package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

// ContentStore caches the editable landing-page text keyed by content key.
// It always holds at least the default keys.
type ContentStore struct {
	base

	mu      sync.RWMutex
	values  map[string]string
	loading bool
}

// NewContentStore returns a store seeded with the default content.
func NewContentStore(client remote.Client, opts ...Option) *ContentStore {
	return &ContentStore{
		base:   newBase(client, opts),
		values: catalog.DefaultContent(),
	}
}

// Load fetches every content row and overlays it on the defaults. A failed
// fetch keeps the current values and emits a failure notice.
func (s *ContentStore) Load(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	items, err := s.client.ListContent(ctx)
	if err != nil {
		s.logger.Error("Content load failed", "error", err.Error())
		s.failure(notify.MsgContentLoadFailed)
		return
	}

	merged := catalog.DefaultContent()
	for _, item := range items {
		merged[item.Key] = item.Value
	}

	s.mu.Lock()
	s.values = merged
	s.mu.Unlock()
	s.logger.Debug("Content loaded", "rows", len(items))
}

// Refetch reloads from the remote.
func (s *ContentStore) Refetch(ctx context.Context) { s.Load(ctx) }

// Update writes value under key. The cache changes only after the remote
// write succeeds.
func (s *ContentStore) Update(ctx context.Context, key, value string) error {
	item, err := s.client.UpsertContent(ctx, key, value)
	if err != nil {
		s.logger.Error("Content update failed", "key", key, "error", err.Error())
		s.failure(notify.MsgContentUpdateFailed)
		return fmt.Errorf("update content %q: %w", key, err)
	}

	if item == nil {
		item = &catalog.ContentItem{Key: key, Value: value}
	}
	s.mu.Lock()
	s.values[item.Key] = item.Value
	s.mu.Unlock()

	s.success(notify.MsgContentUpdated)
	return nil
}

// Get returns the cached value for key and whether it is known.
func (s *ContentStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Snapshot returns a copy of every cached value.
func (s *ContentStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Loading reports whether a Load is in flight.
func (s *ContentStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *ContentStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Follow applies remote content changes until ctx is done.
func (s *ContentStore) Follow(ctx context.Context) (<-chan struct{}, error) {
	return s.follow(ctx, events.TableContent, s.apply)
}

// apply overwrites a known key from an INSERT or UPDATE. Unknown keys and
// deletes are ignored.
func (s *ContentStore) apply(evt events.ChangeEvent) {
	if evt.Kind != events.KindInsert && evt.Kind != events.KindUpdate {
		return
	}
	change, err := events.Decode[catalog.ContentItem](evt)
	if err != nil || change.New == nil {
		s.logger.Warn("Ignoring undecodable content event", "kind", evt.Kind)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.values[change.New.Key]; !known {
		return
	}
	s.values[change.New.Key] = change.New.Value
}
