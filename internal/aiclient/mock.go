package aiclient

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a testify mock of Generator for collaborator tests.
type MockGenerator struct {
	mock.Mock
}

// Generate records the call and returns the configured response.
func (m *MockGenerator) Generate(ctx context.Context, history []*genai.Content, parts ...genai.Part) (string, error) {
	args := m.Called(ctx, history, parts)
	return args.String(0), args.Error(1)
}
