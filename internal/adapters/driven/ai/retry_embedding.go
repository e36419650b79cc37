package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
	"github.com/doclens-labs/doclens-core/internal/retry"
)

// Verify interface compliance
var _ driven.EmbeddingService = (*RetryingEmbedding)(nil)

// RetryConfig configures the embedding retry behaviour.
type RetryConfig struct {
	// Retries is the total number of attempts
	Retries int

	// BaseDelay is the wait before the second attempt; it doubles per attempt
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the standard 3-attempt exponential schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Retries:   3,
		BaseDelay: time.Second,
	}
}

// RetryingEmbedding decorates an EmbeddingService with bounded retries and
// exponential backoff. Attempts are independent; nothing carries over
// between them. Exhaustion returns a *domain.EmbeddingError wrapping the
// last cause.
type RetryingEmbedding struct {
	inner  driven.EmbeddingService
	cfg    RetryConfig
	policy retry.Policy
	logger *slog.Logger
}

// NewRetryingEmbedding wraps inner with the retry policy.
func NewRetryingEmbedding(inner driven.EmbeddingService, cfg RetryConfig, logger *slog.Logger) *RetryingEmbedding {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RetryingEmbedding{
		inner:  inner,
		cfg:    cfg,
		policy: retry.Exponential(cfg.BaseDelay),
		logger: logger,
	}
}

// Embed generates embeddings for multiple texts, retrying transient failures.
func (e *RetryingEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result [][]float32
	err := e.withRetries(ctx, func() error {
		var attemptErr error
		result, attemptErr = e.inner.Embed(ctx, texts)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmbedQuery generates an embedding for a search query, retrying transient failures.
func (e *RetryingEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	var result []float32
	err := e.withRetries(ctx, func() error {
		var attemptErr error
		result, attemptErr = e.inner.EmbedQuery(ctx, query)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withRetries runs call up to cfg.Retries times, sleeping per the backoff
// policy between attempts. Callers must treat this as a blocking operation
// and not hold exclusive resources across it.
func (e *RetryingEmbedding) withRetries(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 0; attempt < e.cfg.Retries; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}

		e.logger.Warn("embedding attempt failed",
			"attempt", attempt+1,
			"retries", e.cfg.Retries,
			"error", lastErr,
		)

		if attempt < e.cfg.Retries-1 {
			select {
			case <-time.After(e.policy(attempt)):
			case <-ctx.Done():
				return &domain.EmbeddingError{Attempts: attempt + 1, Err: ctx.Err()}
			}
		}
	}
	return &domain.EmbeddingError{Attempts: e.cfg.Retries, Err: lastErr}
}

// Dimensions returns the embedding dimension size
func (e *RetryingEmbedding) Dimensions() int {
	return e.inner.Dimensions()
}

// Model returns the model name being used
func (e *RetryingEmbedding) Model() string {
	return e.inner.Model()
}

// HealthCheck verifies the embedding service is available
func (e *RetryingEmbedding) HealthCheck(ctx context.Context) error {
	return e.inner.HealthCheck(ctx)
}

// Close releases resources held by the embedding service
func (e *RetryingEmbedding) Close() error {
	return e.inner.Close()
}
