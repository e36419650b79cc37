package mocks

import (
	"context"
	"fmt"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// MockFetcher is a mock implementation of Fetcher for testing
type MockFetcher struct {
	responses map[string]fetchResponse
	failAll   bool
}

type fetchResponse struct {
	data        []byte
	contentType string
}

// NewMockFetcher creates a new MockFetcher
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		responses: make(map[string]fetchResponse),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if m.failAll {
		return nil, "", &domain.FetchError{URL: url, Err: fmt.Errorf("connection refused")}
	}

	resp, ok := m.responses[url]
	if !ok {
		return nil, "", &domain.FetchError{URL: url, Err: fmt.Errorf("not found")}
	}
	return resp.data, resp.contentType, nil
}

// Helper methods for testing

func (m *MockFetcher) AddResponse(url string, data []byte, contentType string) {
	m.responses[url] = fetchResponse{data: data, contentType: contentType}
}

func (m *MockFetcher) SetFailAll(fail bool) {
	m.failAll = fail
}
