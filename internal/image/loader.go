// Package image loads and decodes strip photos from files, URLs and uploads.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP format

	httputil "github.com/jmylchreest/stripscan/internal/util/http"
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path or URL.
	Load(ctx context.Context, path string) (image.Image, error)
}

// DefaultMaxPixels caps decoded image area. A 48 megapixel phone photo fits.
const DefaultMaxPixels = 50_000_000

// ErrTooLarge is returned when an image's header declares more pixels than allowed.
var ErrTooLarge = errors.New("image dimensions exceed limit")

// Decode decodes an image from raw bytes, as received from an upload or camera
// capture, refusing anything larger than DefaultMaxPixels.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimited(data, DefaultMaxPixels)
}

// DecodeLimited decodes an image from raw bytes after checking the dimensions
// in its header against maxPixels. A maxPixels of zero or less disables the check.
func DecodeLimited(data []byte, maxPixels int) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image data is empty")
	}

	if maxPixels > 0 {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, format, fmt.Errorf("failed to decode image header (format: %s): %w", format, err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(maxPixels) {
			return nil, format, fmt.Errorf("%w: %dx%d is %d pixels, limit is %d",
				ErrTooLarge, cfg.Width, cfg.Height, pixels, maxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, format, nil
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	// MaxPixels bounds the decoded image area; zero or less disables the check.
	MaxPixels int
}

// NewFileLoader creates a new FileLoader instance limited to DefaultMaxPixels.
func NewFileLoader() *FileLoader {
	return &FileLoader{MaxPixels: DefaultMaxPixels}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	img, _, err := DecodeLimited(data, l.MaxPixels)
	return img, err
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	timeout    time.Duration
	maxBytes   int64
}

// NewSmartLoader creates a new SmartLoader. A zero timeout or maxBytes
// falls back to the HTTP package defaults.
func NewSmartLoader(timeout time.Duration, maxBytes int64) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		timeout:    timeout,
		maxBytes:   maxBytes,
	}
}

// WithMaxPixels sets the decoded area limit for both files and URLs.
func (l *SmartLoader) WithMaxPixels(maxPixels int) *SmartLoader {
	l.fileLoader.MaxPixels = maxPixels
	return l
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if IsURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.Load(ctx, path)
}

// loadFromURL fetches and decodes an image from an HTTP(S) URL.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{
		Timeout:  l.timeout,
		MaxBytes: l.maxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	img, _, err := DecodeLimited(data, l.fileLoader.MaxPixels)
	return img, err
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// IsImageFile checks if a file name has a supported image extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(SupportedImageExtensions(), ext)
}
