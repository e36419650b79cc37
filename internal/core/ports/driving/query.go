package driving

import (
	"context"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// QueryService answers natural-language questions against the indexed corpus.
type QueryService interface {
	// Answer retrieves context for the query and synthesizes a structured,
	// citation-backed answer. documentID optionally scopes retrieval to a
	// single document; filters constrain by metadata.
	Answer(ctx context.Context, query string, documentID string, filters domain.Metadata) (*domain.Answer, error)

	// RunBatch ingests the document at sourceURL and answers each question
	// in order, scoped to that document.
	RunBatch(ctx context.Context, sourceURL string, questions []string) ([]*domain.Answer, error)
}
