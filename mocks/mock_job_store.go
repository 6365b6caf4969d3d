package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
)

// MockJobStore is a mock implementation of port.JobStore.
type MockJobStore struct {
	mock.Mock
}

func (m *MockJobStore) CreateFromImport(ctx context.Context, tenantID uuid.UUID, result *estimate.ImportResult, customerID, vehicleID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, result, customerID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}
