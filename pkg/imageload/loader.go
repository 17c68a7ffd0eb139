// Package imageload resolves image URLs to their intrinsic dimensions off
// the editing session's critical path.
package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned for URLs that are neither http(s) nor
// data URLs.
var ErrUnsupportedScheme = errors.New("imageload: unsupported url scheme")

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 20 << 20
)

// Image is a loaded image's intrinsic size.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Loader fetches an image and reports its size.
type Loader interface {
	Load(ctx context.Context, rawURL string) (Image, error)
}

// HTTPLoader loads http(s) and data: URLs. Each load is a single attempt.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPLoader returns a loader with the given per-request timeout; zero
// uses 30 seconds.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPLoader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: defaultMaxBytes,
	}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Image{}, fmt.Errorf("parsing image url: %w", err)
	}

	var body io.Reader
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return Image{}, fmt.Errorf("creating image request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return Image{}, fmt.Errorf("fetching image: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return Image{}, fmt.Errorf("fetching image: status %d", resp.StatusCode)
		}
		body = io.LimitReader(resp.Body, l.maxBytes)

	case "data":
		data, err := decodeDataURL(rawURL)
		if err != nil {
			return Image{}, err
		}
		body = bytes.NewReader(data)

	default:
		return Image{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	cfg, format, err := image.DecodeConfig(body)
	if err != nil {
		return Image{}, fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("decoding image: empty %dx%d", cfg.Width, cfg.Height)
	}

	return Image{URL: rawURL, Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// decodeDataURL returns the payload of a data: URL.
func decodeDataURL(raw string) ([]byte, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data url", ErrUnsupportedScheme)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("imageload: malformed data url")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data url: %w", err)
		}
		return data, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data url: %w", err)
	}
	return []byte(unescaped), nil
}
