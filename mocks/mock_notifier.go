package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"collisionos/internal/port"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyManualIntervention(ctx context.Context, notice port.ManualInterventionNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}
