package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
)

// SettingsService manages the website settings singleton.
type SettingsService struct {
	settingsRepo repositories.SettingsRepository
	logger       *logging.ChanneledLogger
}

func NewSettingsService(settingsRepo repositories.SettingsRepository, logger *logging.ChanneledLogger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, logger: logger}
}

// Get returns nil when settings were never saved.
func (s *SettingsService) Get(ctx context.Context) (*catalog.WebsiteSettings, error) {
	settings, err := s.settingsRepo.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load website settings: %w", err)
	}
	return settings, nil
}

// Save inserts the singleton when absent and updates it otherwise.
func (s *SettingsService) Save(ctx context.Context, patch catalog.SettingsPatch) (*catalog.WebsiteSettings, error) {
	if patch.RedirectURL != nil {
		if err := validateRedirectURL(*patch.RedirectURL); err != nil {
			return nil, err
		}
	}

	previous, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if previous == nil {
		settings := &catalog.WebsiteSettings{
			ID:        security.GenerateULID(),
			SiteTitle: catalog.DefaultSiteTitle,
			UpdatedAt: time.Now().UTC(),
		}
		patch.Apply(settings)
		if settings.SiteTitle == "" {
			settings.SiteTitle = catalog.DefaultSiteTitle
		}
		if err := s.settingsRepo.Store(ctx, settings); err != nil {
			s.logger.Content().Error("Website settings insert failed", "error", err.Error())
			return nil, fmt.Errorf("failed to create website settings: %w", err)
		}
		s.logger.Content().Info("Website settings created", "id", settings.ID, "redirect", settings.ActiveRedirect() != "")
		return settings, nil
	}

	settings := *previous
	if previous.RedirectURL != nil {
		v := *previous.RedirectURL
		settings.RedirectURL = &v
	}
	patch.Apply(&settings)
	if settings.SiteTitle == "" {
		settings.SiteTitle = previous.SiteTitle
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.settingsRepo.Update(ctx, &settings, previous); err != nil {
		s.logger.Content().Error("Website settings update failed", "error", err.Error(), "id", settings.ID)
		return nil, fmt.Errorf("failed to update website settings: %w", err)
	}
	s.logger.Content().Info("Website settings updated", "id", settings.ID, "redirect", settings.ActiveRedirect() != "")
	return &settings, nil
}

// validateRedirectURL accepts blank (clears the redirect) or an absolute http(s) URL.
func validateRedirectURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.InvalidErr("redirect_url must be an absolute http or https URL", map[string]string{"redirect_url": "url"})
	}
	return nil
}
