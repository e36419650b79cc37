package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// MockAnswerCache is an in-memory mock implementation of AnswerCache for testing
type MockAnswerCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.Answer

	hits   int
	misses int
}

// NewMockAnswerCache creates a new MockAnswerCache
func NewMockAnswerCache() *MockAnswerCache {
	return &MockAnswerCache{
		entries: make(map[string]*domain.Answer),
	}
}

func (m *MockAnswerCache) Get(ctx context.Context, key string) (*domain.Answer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false, nil
	}
	m.hits++
	return answer, true, nil
}

func (m *MockAnswerCache) Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = answer
	return nil
}

// Helper methods for testing

func (m *MockAnswerCache) Hits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}

func (m *MockAnswerCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
