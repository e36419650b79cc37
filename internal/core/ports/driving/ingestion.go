package driving

import (
	"context"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// IngestionService drives a document through the ingestion pipeline.
type IngestionService interface {
	// Ingest fetches, parses, chunks, embeds and indexes a document
	// synchronously, returning the terminal-status document. A failed
	// pipeline stage leaves the document in status failed and returns a
	// *domain.PipelineError; a failed fetch returns a *domain.FetchError
	// and no document exists.
	Ingest(ctx context.Context, sourceURL string, metadata domain.Metadata) (*domain.Document, error)

	// EnqueueIngest queues an ingestion to be run by a worker and returns
	// the task id.
	EnqueueIngest(ctx context.Context, sourceURL string, metadata domain.Metadata) (string, error)

	// Get retrieves a document and its current pipeline status
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document along with its chunks and index entries
	Delete(ctx context.Context, id string) error
}
