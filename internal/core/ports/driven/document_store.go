package driven

import (
	"context"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL)
type DocumentStore interface {
	// Create inserts a new document
	Create(ctx context.Context, doc *domain.Document) error

	// UpdateStatus advances a document's pipeline status.
	// errMsg is stored for failed transitions and empty otherwise.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves documents with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// Count returns total document count
	Count(ctx context.Context) (int, error)

	// Delete removes a document by ID
	Delete(ctx context.Context, id string) error
}

// ChunkStore handles chunk persistence (PostgreSQL)
// Note: embeddings are stored in the search index, not here
type ChunkStore interface {
	// SaveBatch saves multiple chunks in a transaction
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// GetByIDs retrieves chunks by id set, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Chunk, error)

	// GetByDocument retrieves all chunks for a document ordered by chunk number
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// DeleteByDocument deletes all chunks for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}
