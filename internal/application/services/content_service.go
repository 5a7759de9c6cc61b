package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/repositories"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

const maxContentKeyLength = 128

// ContentService manages the editable landing page entries.
type ContentService struct {
	contentRepo repositories.ContentRepository
	logger      *logging.ChanneledLogger
}

func NewContentService(contentRepo repositories.ContentRepository, logger *logging.ChanneledLogger) *ContentService {
	return &ContentService{contentRepo: contentRepo, logger: logger}
}

// List returns the stored rows only; defaults are merged by readers.
func (s *ContentService) List(ctx context.Context) ([]*catalog.ContentItem, error) {
	items, err := s.contentRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

// Merged returns the defaults overlaid with every stored value.
func (s *ContentService) Merged(ctx context.Context) (map[string]string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	merged := catalog.DefaultContent()
	for _, item := range items {
		merged[item.Key] = item.Value
	}
	return merged, nil
}

// Upsert stores value under key.
func (s *ContentService) Upsert(ctx context.Context, key, value string) (*catalog.ContentItem, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperr.InvalidErr("content key cannot be empty", map[string]string{"key": "required"})
	}
	if utf8.RuneCountInString(key) > maxContentKeyLength {
		return nil, apperr.InvalidErr("content key is too long", map[string]string{"key": "max"})
	}

	item := &catalog.ContentItem{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := s.contentRepo.Upsert(ctx, item); err != nil {
		s.logger.Content().Error("Content upsert failed", "error", err.Error(), "key", key)
		return nil, fmt.Errorf("failed to save content %s: %w", key, err)
	}

	s.logger.Content().Info("Content saved", "key", key, "length", len(value))
	return item, nil
}
