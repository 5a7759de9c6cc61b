// Package spreadsheet turns product import sheets (CSV or XLSX) into
// product drafts and produces the downloadable import template.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/xuri/excelize/v2"
)

// Format is a supported sheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Column names, matched after trimming and lower-casing the header.
const (
	ColTitle        = "title"
	ColDescription  = "description"
	ColCategory     = "category"
	ColImages       = "images"
	ColPurchaseLink = "purchase_link"
	ColShopLink     = "shop_link"
	ColIsFeatured   = "is_featured"
)

// Columns is the template header in order.
var Columns = []string{ColTitle, ColDescription, ColCategory, ColImages, ColPurchaseLink, ColShopLink, ColIsFeatured}

var requiredColumns = []string{ColTitle, ColCategory}

var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrEmptySheet        = errors.New("sheet has no rows")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrInvalidRow        = errors.New("invalid row")
)

// RowError names the sheet row (1-based, header is row 1) that failed.
type RowError struct {
	Row   int
	Field string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s is required", e.Row, e.Field)
}

func (e *RowError) Unwrap() error { return ErrInvalidRow }

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DetectFormat picks a format from a file name extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// ParseFile detects the format from filename and parses r.
func ParseFile(filename string, r io.Reader) ([]catalog.ProductDraft, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	return Parse(r, format)
}

// Parse reads every data row into a draft. Missing required columns abort
// before any row is looked at; fully blank rows are skipped.
func Parse(r io.Reader, format Format) ([]catalog.ProductDraft, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return mapRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func mapRows(rows [][]string) ([]catalog.ProductDraft, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	drafts := make([]catalog.ProductDraft, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		draft := catalog.ProductDraft{
			Title:        cell(ColTitle),
			Description:  cell(ColDescription),
			Category:     cell(ColCategory),
			Images:       catalog.SplitImages(cell(ColImages)),
			PurchaseLink: optional(cell(ColPurchaseLink)),
			ShopLink:     optional(cell(ColShopLink)),
			IsFeatured:   ParseBool(cell(ColIsFeatured)),
		}
		if draft.Images == nil {
			draft.Images = []string{}
		}

		rowNumber := i + 2
		if draft.Title == "" {
			return nil, &RowError{Row: rowNumber, Field: ColTitle}
		}
		if draft.Category == "" {
			return nil, &RowError{Row: rowNumber, Field: ColCategory}
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// ParseBool reads the featured flag. Anything unrecognized is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "x", "có":
		return true
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var templateRow = []string{
	"Classic Rainbow Hoodie",
	"Ultra-soft fleece hoodie",
	"Hoodies",
	"https://example.com/hoodie-front.jpg,https://example.com/hoodie-back.jpg",
	"https://example.com/buy/hoodie",
	"https://example.com/shop",
	"true",
}

// WriteTemplate writes the header and one example row.
func WriteTemplate(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll([][]string{Columns, templateRow}); err != nil {
			return fmt.Errorf("failed to write csv template: %w", err)
		}
		return nil
	case FormatXLSX:
		return writeXLSXTemplate(w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func writeXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for i, row := range [][]string{Columns, templateRow} {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write template row: %w", err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx template: %w", err)
	}
	return nil
}

// ContentType returns the MIME type served for a template download.
func ContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
