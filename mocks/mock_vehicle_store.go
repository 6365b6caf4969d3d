package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"collisionos/internal/domain"
)

// MockVehicleStore is a mock implementation of port.VehicleStore.
type MockVehicleStore struct {
	mock.Mock
}

func (m *MockVehicleStore) FindOrCreate(ctx context.Context, tenantID, ownerID uuid.UUID, v *domain.Vehicle) (*domain.Vehicle, bool, error) {
	args := m.Called(ctx, tenantID, ownerID, v)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Vehicle), args.Bool(1), args.Error(2)
}
