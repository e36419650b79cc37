package mocks

import (
	"context"
	"errors"
)

// MockGenerationService is a mock implementation of GenerationService for testing
type MockGenerationService struct {
	response string
	err      error

	calls   int
	prompts []string
}

// NewMockGenerationService creates a new MockGenerationService
func NewMockGenerationService() *MockGenerationService {
	return &MockGenerationService{
		response: `{"answer":"","reasoning":"","conditions":{},"citations":[]}`,
	}
}

func (m *MockGenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockGenerationService) Model() string {
	return "mock-generation-model"
}

func (m *MockGenerationService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerationService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockGenerationService) SetResponse(response string) {
	m.response = response
}

func (m *MockGenerationService) SetError(msg string) {
	m.err = errors.New(msg)
}

func (m *MockGenerationService) Calls() int {
	return m.calls
}

func (m *MockGenerationService) LastPrompt() string {
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
