package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"collisionos/internal/domain"
)

// MockImportLedger is a mock implementation of port.ImportLedger.
type MockImportLedger struct {
	mock.Mock
}

func (m *MockImportLedger) Record(ctx context.Context, rec *domain.ImportRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockImportLedger) Get(ctx context.Context, importID string) (*domain.ImportRecord, error) {
	args := m.Called(ctx, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportRecord), args.Error(1)
}

func (m *MockImportLedger) List(ctx context.Context, filter domain.ImportFilter) (*domain.ImportPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportPage), args.Error(1)
}

func (m *MockImportLedger) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	args := m.Called(ctx, days)
	return args.Int(0), args.Error(1)
}

func (m *MockImportLedger) Statistics(ctx context.Context, period, groupBy string) (*domain.ImportStats, error) {
	args := m.Called(ctx, period, groupBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportStats), args.Error(1)
}
