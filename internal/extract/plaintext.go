package extract

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*PlainText)(nil)

// PlainText handles text-like content that needs no format decoding.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Extract validates the bytes as UTF-8 text and returns them unchanged.
func (e *PlainText) Extract(_ context.Context, data []byte, contentType string) (string, error) {
	if !utf8.Valid(data) {
		return "", &domain.ParseError{
			ContentType: contentType,
			Err:         fmt.Errorf("content is not valid UTF-8 text"),
		}
	}
	return string(data), nil
}

// SupportedTypes returns text-like MIME types.
func (e *PlainText) SupportedTypes() []string {
	return []string{"text/*", "application/json", "application/xml"}
}

// Priority returns the generic text priority.
func (e *PlainText) Priority() int {
	return 10
}
