package services

import (
	"errors"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

// MediaService accepts image swaps from the editor.
type MediaService struct {
	processor *media.ImageProcessor
	logger    *logging.ChanneledLogger
}

func NewMediaService(processor *media.ImageProcessor, logger *logging.ChanneledLogger) *MediaService {
	return &MediaService{processor: processor, logger: logger}
}

// Upload stores a base64 data URL and returns its public URLs.
func (s *MediaService) Upload(data string) (*media.StoredImage, error) {
	stored, err := s.processor.SaveProductImage(data)
	switch {
	case err == nil:
		return stored, nil
	case errors.Is(err, media.ErrEmptyUpload), errors.Is(err, media.ErrUnsupportedFormat), errors.Is(err, media.ErrUploadTooLarge):
		return nil, &apperr.AppError{Kind: apperr.Invalid, PublicMsg: err.Error(), Err: err}
	}
	s.logger.Media().Error("Image upload failed", "error", err.Error())
	return nil, apperr.Wrap(err)
}

// Remove deletes an upload previously returned by Upload.
func (s *MediaService) Remove(url string) error {
	if err := s.processor.DeleteProductImage(url); err != nil {
		s.logger.Media().Error("Image removal failed", "error", err.Error(), "url", url)
		return apperr.Wrap(err)
	}
	return nil
}
