package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/spreadsheet"
)

// ImportService turns uploaded sheets into one bulk insert.
type ImportService struct {
	catalog *CatalogService
	logger  *logging.ChanneledLogger
}

func NewImportService(catalogService *CatalogService, logger *logging.ChanneledLogger) *ImportService {
	return &ImportService{catalog: catalogService, logger: logger}
}

// Import parses the sheet and inserts every row, or nothing.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) ([]*catalog.Product, error) {
	start := time.Now()

	drafts, err := spreadsheet.ParseFile(filename, r)
	if err != nil {
		s.logger.Import().Warn("Spreadsheet rejected", "file", filename, "error", err.Error())
		return nil, importError(err)
	}
	if len(drafts) == 0 {
		return nil, apperr.InvalidErr("spreadsheet has no product rows", nil)
	}

	products, err := s.catalog.CreateMany(ctx, drafts)
	if err != nil {
		s.logger.Import().Error("Spreadsheet import failed", "file", filename, "rows", len(drafts), "error", err.Error())
		return nil, err
	}

	s.logger.Import().Info("Spreadsheet imported", "file", filename, "rows", len(products), "duration", time.Since(start))
	return products, nil
}

// Template writes the example sheet in format.
func (s *ImportService) Template(w io.Writer, format spreadsheet.Format) error {
	return spreadsheet.WriteTemplate(w, format)
}

func importError(err error) error {
	var rowErr *spreadsheet.RowError
	switch {
	case errors.Is(err, spreadsheet.ErrMissingColumns):
		return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: "spreadsheet must have at least the 'title' and 'category' columns", Err: err}
	case errors.As(err, &rowErr):
		return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: rowErr.Error(), Err: err}
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat), errors.Is(err, spreadsheet.ErrEmptySheet):
		return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: err.Error(), Err: err}
	}
	return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: "could not read spreadsheet", Err: err}
}
