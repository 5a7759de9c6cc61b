package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/sync/notify"
	"github.com/AtRiskMedia/storefront-go/internal/sync/remote"
)

// SettingsStore caches the website settings singleton, which may be absent.
type SettingsStore struct {
	base

	mu        sync.RWMutex
	settings  *catalog.WebsiteSettings
	listeners []func(*catalog.WebsiteSettings)
}

func NewSettingsStore(client remote.Client, opts ...Option) *SettingsStore {
	return &SettingsStore{base: newBase(client, opts)}
}

// Load fetches the singleton. Errors are logged and leave the cache as is;
// the storefront renders fine without settings.
func (s *SettingsStore) Load(ctx context.Context) {
	settings, err := s.client.GetSettings(ctx)
	if err != nil {
		s.logger.Error("Settings load failed", "error", err.Error())
		return
	}
	s.replace(settings)
}

// Save inserts the singleton when absent and updates it otherwise.
func (s *SettingsStore) Save(ctx context.Context, patch catalog.SettingsPatch) error {
	saved, err := s.client.SaveSettings(ctx, patch)
	if err != nil {
		s.logger.Error("Settings save failed", "error", err.Error())
		s.failure(notify.MsgSettingsUpdateFailed)
		return fmt.Errorf("save settings: %w", err)
	}
	s.replace(saved)
	s.success(notify.MsgSettingsUpdated)
	return nil
}

// Current returns a copy of the cached settings, or nil.
func (s *SettingsStore) Current() *catalog.WebsiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil
	}
	cp := *s.settings
	return &cp
}

// RedirectURL is the trimmed redirect target, "" when none is set.
func (s *SettingsStore) RedirectURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return ""
	}
	return s.settings.ActiveRedirect()
}

// OnChange registers fn to run after every cache replacement.
func (s *SettingsStore) OnChange(fn func(*catalog.WebsiteSettings)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Follow applies remote settings changes until ctx is done.
func (s *SettingsStore) Follow(ctx context.Context) (<-chan struct{}, error) {
	return s.follow(ctx, events.TableSettings, s.apply)
}

func (s *SettingsStore) apply(evt events.ChangeEvent) {
	change, err := events.Decode[catalog.WebsiteSettings](evt)
	if err != nil {
		s.logger.Warn("Ignoring undecodable settings event", "kind", evt.Kind, "error", err.Error())
		return
	}
	switch evt.Kind {
	case events.KindInsert, events.KindUpdate:
		if change.New != nil {
			s.replace(change.New)
		}
	case events.KindDelete:
		s.replace(nil)
	}
}

func (s *SettingsStore) replace(settings *catalog.WebsiteSettings) {
	var cp *catalog.WebsiteSettings
	if settings != nil {
		v := *settings
		cp = &v
	}

	s.mu.Lock()
	s.settings = cp
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s.Current())
	}
}
