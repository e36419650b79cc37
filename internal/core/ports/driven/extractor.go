package driven

import "context"

// TextExtractor produces plain text from raw document bytes.
// Format internals (PDF, DOCX, EML, OCR) live behind this port.
type TextExtractor interface {
	// Extract returns the extracted text or a format/parse error.
	Extract(ctx context.Context, data []byte, contentType string) (string, error)

	// SupportedTypes returns MIME types this extractor handles.
	// Can include wildcards like "text/*" or specific types like "text/html".
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	// Priority ranges:
	//   50-89: Format-specific (HTML, markdown)
	//   10-49: Generic text handling
	//   1-9:   Fallback (OCR)
	Priority() int
}

// ExtractorRegistry manages text extractors.
// When multiple extractors match a MIME type, the highest priority one is used.
type ExtractorRegistry interface {
	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if nothing is registered for the type.
	Get(contentType string) TextExtractor

	// Register registers an extractor.
	Register(extractor TextExtractor)

	// List returns all registered MIME types.
	List() []string
}
