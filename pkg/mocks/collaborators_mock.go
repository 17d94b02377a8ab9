package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAIClient is a mock implementation of ai.Client interface.
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Complete(ctx context.Context, prompt, text string) (string, error) {
	args := m.Called(ctx, prompt, text)

	return args.String(0), args.Error(1)
}

// MockClipboard is a mock implementation of clipboard.Clipboard interface.
type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteAll(text string) error {
	args := m.Called(text)

	return args.Error(0)
}
