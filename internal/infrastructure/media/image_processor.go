// Package media stores uploaded product images and their WebP thumbnails.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// MaxUploadBytes bounds a decoded upload.
const MaxUploadBytes = 10 << 20

// ThumbnailWidths are generated for every raster upload.
var ThumbnailWidths = []int{600, 300}

var (
	ErrEmptyUpload       = errors.New("empty image data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrUploadTooLarge    = errors.New("image exceeds upload limit")
)

var dataURLPattern = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,`)

// StoredImage is the public location of an upload and its thumbnails.
type StoredImage struct {
	URL        string   `json:"url"`
	Thumbnails []string `json:"thumbnails"`
}

// ImageProcessor writes uploads below basePath, served under /media.
type ImageProcessor struct {
	basePath string
	logger   *logging.ChanneledLogger
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath string, logger *logging.ChanneledLogger) *ImageProcessor {
	return &ImageProcessor{
		basePath: basePath,
		logger:   logger,
	}
}

// BasePath is the directory served under /media.
func (p *ImageProcessor) BasePath() string {
	return p.basePath
}

// SaveProductImage decodes a base64 data URL, stores the original under
// images/products and renders WebP thumbnails for raster formats.
func (p *ImageProcessor) SaveProductImage(data string) (*StoredImage, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyUpload
	}

	match := dataURLPattern.FindStringSubmatch(data)
	if match == nil {
		return nil, ErrUnsupportedFormat
	}
	ext := extractExtension(match[1])
	if ext == "" {
		return nil, ErrUnsupportedFormat
	}

	decoded, err := base64.StdEncoding.DecodeString(data[len(match[0]):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(decoded) > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	productsDir := filepath.Join(p.basePath, "images", "products")
	thumbsDir := filepath.Join(p.basePath, "images", "thumbs")
	for _, dir := range []string{productsDir, thumbsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	basename := strings.ToLower(security.GenerateULID())
	filename := basename + "." + ext
	originalPath := filepath.Join(productsDir, filename)
	if err := os.WriteFile(originalPath, decoded, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}

	stored := &StoredImage{URL: "/media/images/products/" + filename, Thumbnails: []string{}}
	if ext == "svg" {
		p.logger.Media().Info("Stored vector image", "file", filename, "bytes", len(decoded))
		return stored, nil
	}

	thumbs, err := p.generateThumbnails(decoded, basename, thumbsDir)
	if err != nil {
		os.Remove(originalPath)
		return nil, err
	}
	for _, thumb := range thumbs {
		stored.Thumbnails = append(stored.Thumbnails, "/media/images/thumbs/"+filepath.Base(thumb))
	}

	p.logger.Media().Info("Stored product image", "file", filename, "bytes", len(decoded), "thumbnails", len(thumbs))
	return stored, nil
}

// generateThumbnails writes one WebP per ThumbnailWidths entry and removes
// the partial set when any of them fails.
func (p *ImageProcessor) generateThumbnails(raw []byte, basename, thumbsDir string) ([]string, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	paths := make([]string, 0, len(ThumbnailWidths))
	for _, width := range ThumbnailWidths {
		resized := img
		if img.Bounds().Dx() > width {
			resized = imaging.Resize(img, width, 0, imaging.Lanczos)
		}

		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))
		if err := webp.Save(thumbPath, resized, &webp.Options{Quality: 85}); err != nil {
			for _, done := range paths {
				os.Remove(done)
			}
			return nil, fmt.Errorf("failed to save WebP thumbnail: %w", err)
		}
		paths = append(paths, thumbPath)
	}
	return paths, nil
}

// DeleteProductImage removes an upload and its thumbnails. URLs that do not
// point into the media directory are ignored.
func (p *ImageProcessor) DeleteProductImage(url string) error {
	const prefix = "/media/images/products/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	filename := filepath.Base(strings.TrimPrefix(url, prefix))
	if filename == "." || filename == "/" {
		return nil
	}

	originalPath := filepath.Join(p.basePath, "images", "products", filename)
	if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}

	basename := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, width := range ThumbnailWidths {
		thumbPath := filepath.Join(p.basePath, "images", "thumbs", fmt.Sprintf("%s_%dpx.webp", basename, width))
		if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
			p.logger.Media().Warn("Failed to remove thumbnail", "path", thumbPath, "error", err.Error())
		}
	}
	p.logger.Media().Info("Removed product image", "file", filename)
	return nil
}

// extractExtension maps an image MIME type onto a file extension.
func extractExtension(mime string) string {
	switch strings.ToLower(mime) {
	case "image/svg+xml":
		return "svg"
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	return ""
}
