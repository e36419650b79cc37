package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerCache = (*AnswerCache)(nil)

const answerKeyPrefix = "doclens:answer:"

// AnswerCache implements driven.AnswerCache using Redis with TTL expiry.
type AnswerCache struct {
	client *redis.Client
}

// NewAnswerCache creates a new Redis-backed AnswerCache
func NewAnswerCache(client *redis.Client) *AnswerCache {
	return &AnswerCache{client: client}
}

// Get returns the cached answer and whether it was present.
func (c *AnswerCache) Get(ctx context.Context, key string) (*domain.Answer, bool, error) {
	data, err := c.client.Get(ctx, answerKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached answer: %w", err)
	}

	var answer domain.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		// Corrupt entry; treat as a miss
		return nil, false, nil
	}

	return &answer, true, nil
}

// Set stores an answer with the given TTL.
func (c *AnswerCache) Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	if err := c.client.Set(ctx, answerKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answer: %w", err)
	}

	return nil
}
