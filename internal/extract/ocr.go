package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*OCR)(nil)

// OCR posts document bytes to a tesseract-style HTTP service and is the
// fallback for image types and anything no other extractor claims.
type OCR struct {
	endpoint string
	client   *http.Client
}

// NewOCR creates an OCR extractor. endpoint may be empty, in which case
// extraction fails with a ParseError until a service is configured.
func NewOCR(endpoint string, timeout time.Duration) *OCR {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OCR{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ocrResponse is the response body of the OCR service.
type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Extract sends the bytes to the OCR service and returns the recognised text.
func (e *OCR) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if e.endpoint == "" {
		return "", &domain.ParseError{
			ContentType: contentType,
			Err:         fmt.Errorf("no extractor for content type and OCR endpoint not configured"),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", &domain.ParseError{ContentType: contentType, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &domain.ParseError{ContentType: contentType, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ParseError{ContentType: contentType, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ParseError{
			ContentType: contentType,
			Err:         fmt.Errorf("ocr service returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var ocrResp ocrResponse
	if err := json.Unmarshal(body, &ocrResp); err != nil {
		return "", &domain.ParseError{ContentType: contentType, Err: fmt.Errorf("invalid ocr response: %w", err)}
	}
	if ocrResp.Error != "" {
		return "", &domain.ParseError{ContentType: contentType, Err: fmt.Errorf("ocr failed: %s", ocrResp.Error)}
	}

	return ocrResp.Text, nil
}

// SupportedTypes covers images plus the catch-all fallback.
func (e *OCR) SupportedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/tiff", "*"}
}

// Priority returns the fallback priority.
func (e *OCR) Priority() int {
	return 1
}

// DefaultRegistry builds a registry with the built-in extractors.
func DefaultRegistry(ocrEndpoint string, ocrTimeout time.Duration) *Registry {
	r := NewRegistry()
	r.Register(NewPlainText())
	r.Register(NewHTML())
	r.Register(NewOCR(ocrEndpoint, ocrTimeout))
	return r
}
