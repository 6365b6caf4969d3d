package mocks

import (
	"github.com/stretchr/testify/mock"

	"collisionos/internal/estimate"
)

// MockDocumentParser is a mock implementation of port.DocumentParser.
type MockDocumentParser struct {
	mock.Mock
}

func (m *MockDocumentParser) Parse(content []byte) (*estimate.ParsedDocument, error) {
	args := m.Called(content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.ParsedDocument), args.Error(1)
}
