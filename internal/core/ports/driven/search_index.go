package driven

import (
	"context"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// SearchIndex stores chunk content and embeddings and serves the two
// independent retrieval signals. Each search returns an ordered list of
// chunk ids with dense 1-based ranks; the raw score is optional and its
// scale is backend-specific.
type SearchIndex interface {
	// Index indexes chunks for a document
	Index(ctx context.Context, chunks []*domain.Chunk) error

	// VectorSearch returns the topK chunks most similar to the embedding
	VectorSearch(ctx context.Context, embedding []float32, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error)

	// LexicalSearch returns the topK chunks best matching the query text
	LexicalSearch(ctx context.Context, query string, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error)

	// DeleteByDocument deletes all indexed chunks for a document
	DeleteByDocument(ctx context.Context, documentID string) error

	// HealthCheck verifies the search index is available
	HealthCheck(ctx context.Context) error
}
