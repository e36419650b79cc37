package driven

import (
	"context"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// AnswerCache caches structured answers keyed by a query fingerprint.
// Cache failures must degrade to a miss, never fail the query.
type AnswerCache interface {
	// Get returns the cached answer and whether it was present.
	Get(ctx context.Context, key string) (*domain.Answer, bool, error)

	// Set stores an answer with the given TTL.
	Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error
}
