package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// MockSearchIndex is a mock implementation of SearchIndex for testing.
// Vector and lexical results are scripted per test rather than computed.
type MockSearchIndex struct {
	mu      sync.RWMutex
	indexed map[string]*domain.Chunk

	vectorResults  []domain.RankedResult
	lexicalResults []domain.RankedResult
	failVector     bool
	failLexical    bool
	failIndex      bool
}

// NewMockSearchIndex creates a new MockSearchIndex
func NewMockSearchIndex() *MockSearchIndex {
	return &MockSearchIndex{
		indexed: make(map[string]*domain.Chunk),
	}
}

func (m *MockSearchIndex) Index(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIndex {
		return errors.New("index unavailable")
	}
	for _, chunk := range chunks {
		m.indexed[chunk.ID] = chunk
	}
	return nil
}

func (m *MockSearchIndex) VectorSearch(ctx context.Context, embedding []float32, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failVector {
		return nil, errors.New("vector backend unavailable")
	}
	return truncate(m.vectorResults, topK), nil
}

func (m *MockSearchIndex) LexicalSearch(ctx context.Context, query string, filters domain.SearchFilters, topK int) ([]domain.RankedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failLexical {
		return nil, errors.New("lexical backend unavailable")
	}
	return truncate(m.lexicalResults, topK), nil
}

func (m *MockSearchIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, chunk := range m.indexed {
		if chunk.DocumentID == documentID {
			delete(m.indexed, id)
		}
	}
	return nil
}

func (m *MockSearchIndex) HealthCheck(ctx context.Context) error {
	return nil
}

func truncate(results []domain.RankedResult, topK int) []domain.RankedResult {
	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}

// Helper methods for testing

func (m *MockSearchIndex) SetVectorResults(results []domain.RankedResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectorResults = results
}

func (m *MockSearchIndex) SetLexicalResults(results []domain.RankedResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lexicalResults = results
}

func (m *MockSearchIndex) SetFailVector(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failVector = fail
}

func (m *MockSearchIndex) SetFailLexical(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLexical = fail
}

func (m *MockSearchIndex) SetFailIndex(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIndex = fail
}

func (m *MockSearchIndex) IndexedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.indexed)
}
