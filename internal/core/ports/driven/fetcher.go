package driven

import "context"

// Fetcher retrieves raw document bytes from a source locator.
type Fetcher interface {
	// Fetch downloads the document and reports its declared content type.
	// The content type falls back to an extension-based guess when the
	// source does not declare one.
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}
