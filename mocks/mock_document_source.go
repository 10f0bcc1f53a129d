package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"birvalid/internal/port"
)

// MockDocumentSource is a mock implementation of port.DocumentSource.
type MockDocumentSource struct {
	mock.Mock
}

func (m *MockDocumentSource) GetDocument(ctx context.Context, id string) (*port.SourceDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SourceDocument), args.Error(1)
}
