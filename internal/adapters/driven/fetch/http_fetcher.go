// Package fetch retrieves raw document bytes from remote sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Fetcher = (*HTTPFetcher)(nil)

// extensionTypes maps URL extensions to MIME types for sources that do not
// declare a Content-Type.
var extensionTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"doc":  "application/msword",
	"eml":  "message/rfc822",
	"txt":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// Config holds fetcher configuration.
type Config struct {
	// Timeout for the whole download
	Timeout time.Duration

	// MaxBytes caps the downloaded size; 0 means no cap
	MaxBytes int64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:  60 * time.Second,
		MaxBytes: 64 << 20, // 64 MiB
	}
}

// HTTPFetcher implements driven.Fetcher over plain HTTP(S) GET.
type HTTPFetcher struct {
	cfg    Config
	client *http.Client
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &HTTPFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch downloads the document. Any transport or status failure is returned
// as a *domain.FetchError; no document state exists at this point.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &domain.FetchError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &domain.FetchError{
			URL: rawURL,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	reader := io.Reader(resp.Body)
	if f.cfg.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.cfg.MaxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", &domain.FetchError{URL: rawURL, Err: err}
	}
	if f.cfg.MaxBytes > 0 && int64(len(data)) > f.cfg.MaxBytes {
		return nil, "", &domain.FetchError{
			URL: rawURL,
			Err: fmt.Errorf("document exceeds %d byte limit", f.cfg.MaxBytes),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		if guessed := ContentTypeFromURL(rawURL); guessed != "" {
			contentType = guessed
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return data, contentType, nil
}

// ContentTypeFromURL guesses a MIME type from the URL's file extension.
// Returns "" when the extension is unknown.
func ContentTypeFromURL(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return ""
	}
	return extensionTypes[strings.ToLower(path[idx+1:])]
}

// FilenameFromURL extracts the last path segment of the URL, or "" when the
// URL has no usable path.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	return segments[len(segments)-1]
}
