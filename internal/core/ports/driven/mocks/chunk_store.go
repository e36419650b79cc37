package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing
type MockChunkStore struct {
	mu         sync.RWMutex
	chunks     map[string]*domain.Chunk
	byDocument map[string][]*domain.Chunk

	failSave bool
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		chunks:     make(map[string]*domain.Chunk),
		byDocument: make(map[string][]*domain.Chunk),
	}
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("store unavailable")
	}

	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk

		found := false
		for i, c := range m.byDocument[chunk.DocumentID] {
			if c.ID == chunk.ID {
				m.byDocument[chunk.DocumentID][i] = chunk
				found = true
				break
			}
		}
		if !found {
			m.byDocument[chunk.DocumentID] = append(m.byDocument[chunk.DocumentID], chunk)
		}
	}
	return nil
}

func (m *MockChunkStore) GetByIDs(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Chunk
	for _, id := range ids {
		if chunk, ok := m.chunks[id]; ok {
			result = append(result, chunk)
		}
	}
	// Stores return id-set lookups unordered; shuffle-by-sort keeps tests
	// honest about reordering on the caller side.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunks := append([]*domain.Chunk(nil), m.byDocument[documentID]...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkNumber < chunks[j].ChunkNumber })
	return chunks, nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range m.byDocument[documentID] {
		delete(m.chunks, chunk.ID)
	}
	delete(m.byDocument, documentID)
	return nil
}

// Helper methods for testing

func (m *MockChunkStore) SetFailSave(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = fail
}

func (m *MockChunkStore) CountChunks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}
