package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

// MockCustomerStore is a mock implementation of port.CustomerStore.
type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) Find(ctx context.Context, tenantID uuid.UUID, criteria port.CustomerCriteria) ([]domain.Customer, error) {
	args := m.Called(ctx, tenantID, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerStore) Create(ctx context.Context, tenantID uuid.UUID, customer *domain.Customer) error {
	args := m.Called(ctx, tenantID, customer)
	return args.Error(0)
}
