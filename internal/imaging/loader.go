package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxSourceBytes is the largest encoded source accepted by default.
const DefaultMaxSourceBytes = 10 << 20

// DefaultFetchTimeout bounds a single URL download.
const DefaultFetchTimeout = 30 * time.Second

const userAgent = "image-edit-mcp/1.0"

// ErrSourceTooLarge is returned when an encoded source exceeds the cache's
// byte limit.
var ErrSourceTooLarge = errors.New("image source exceeds size limit")

// ImageCache provides thread-safe caching of decoded source images.
//
// Images are keyed by the path or URL they were loaded from. Inline data
// (base64 or raw bytes) is decoded on every call and never cached.
//
// Every source passes the same policy before decoding: the encoded size must
// not exceed the configured limit, and the bytes must decode as PNG, JPEG,
// GIF, BMP, TIFF or WebP. EXIF orientation is applied on decode.
//
// # Example Usage
//
//	cache := imaging.NewImageCache(imaging.WithMaxBytes(5 << 20))
//	img, err := cache.LoadSource(ctx, "https://example.com/cutout.png")
//	if err != nil {
//	    return err
//	}
//	info, _ := cache.Info("https://example.com/cutout.png")
type ImageCache struct {
	mu       sync.RWMutex
	images   map[string]cachedSource
	maxBytes int64
	client   *http.Client
}

type cachedSource struct {
	img  image.Image
	info SourceInfo
}

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithMaxBytes sets the encoded size limit. Values <= 0 keep the default.
func WithMaxBytes(n int64) CacheOption {
	return func(c *ImageCache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the client used by LoadURL.
func WithHTTPClient(client *http.Client) CacheOption {
	return func(c *ImageCache) {
		if client != nil {
			c.client = client
		}
	}
}

// NewImageCache creates an empty cache.
func NewImageCache(opts ...CacheOption) *ImageCache {
	c := &ImageCache{
		images:   make(map[string]cachedSource),
		maxBytes: DefaultMaxSourceBytes,
		client:   &http.Client{Timeout: DefaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxBytes returns the encoded size limit.
func (c *ImageCache) MaxBytes() int64 {
	return c.maxBytes
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// # Errors
//
//   - ErrSourceTooLarge (wrapped) if the file is larger than the limit
//   - the os error if the file cannot be opened or read
//   - a decode error if the contents are not a supported image
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.cached(path); ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := c.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c.decodeAndStore(path, data)
}

// LoadURL downloads an http(s) image and decodes it. Successful downloads are
// cached by URL.
func (c *ImageCache) LoadURL(ctx context.Context, rawURL string) (image.Image, error) {
	if img, ok := c.cached(rawURL); ok {
		return img, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q (only http and https are supported)", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", ct)
	}
	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%s: %d bytes: %w", rawURL, resp.ContentLength, ErrSourceTooLarge)
	}

	data, err := c.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return c.decodeAndStore(rawURL, data)
}

// DecodeBytes decodes inline image data under the same size policy as files.
func (c *ImageCache) DecodeBytes(data []byte) (image.Image, error) {
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%d bytes: %w", len(data), ErrSourceTooLarge)
	}
	img, _, err := Decode(data)
	return img, err
}

// DecodeBase64 decodes standard base64 image data. A "data:<mime>;base64,"
// prefix is accepted and ignored.
func (c *ImageCache) DecodeBase64(s string) (image.Image, error) {
	if _, payload, ok := strings.Cut(s, ";base64,"); ok && strings.HasPrefix(s, "data:") {
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return c.DecodeBytes(data)
}

// LoadSource loads either an http(s) URL or a file path.
func (c *ImageCache) LoadSource(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.LoadURL(ctx, source)
	}
	return c.Load(source)
}

// Info returns metadata for a previously loaded path or URL.
func (c *ImageCache) Info(key string) (*SourceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.images[key]
	if !ok {
		return nil, false
	}
	info := entry.info
	return &info, true
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedSource)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache. Unknown keys are ignored.
func (c *ImageCache) Evict(key string) {
	c.mu.Lock()
	delete(c.images, key)
	c.mu.Unlock()
}

func (c *ImageCache) cached(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.images[key]
	return entry.img, ok
}

func (c *ImageCache) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("more than %d bytes: %w", c.maxBytes, ErrSourceTooLarge)
	}
	return data, nil
}

func (c *ImageCache) decodeAndStore(key string, data []byte) (image.Image, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.images[key] = cachedSource{img: img, info: describe(img, format, int64(len(data)))}
	c.mu.Unlock()
	return img, nil
}

// Decode decodes an encoded image, applying EXIF orientation. It returns the
// detected format name ("png", "jpeg", "webp", ...).
func Decode(data []byte) (image.Image, string, error) {
	_, format, cfgErr := image.DecodeConfig(bytes.NewReader(data))

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, format, nil
	}

	if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return img, "webp", nil
	}

	if cfgErr != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", cfgErr)
	}
	return nil, "", fmt.Errorf("failed to decode image: %w", err)
}

// SourceInfo contains metadata about a loaded source image.
type SourceInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder's format name: "png", "jpeg", "gif", "webp", ...
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the encoded size of the source.
	SizeBytes int64 `json:"size_bytes"`
}

func describe(img image.Image, format string, size int64) SourceInfo {
	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	if format == "" {
		format = "unknown"
	}
	b := img.Bounds()
	return SourceInfo{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  size,
	}
}
