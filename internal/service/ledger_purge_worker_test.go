package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"collisionos/internal/service"
	"collisionos/mocks"
)

func TestLedgerPurgeWorker_RunOnce(t *testing.T) {
	l := new(mocks.MockImportLedger)
	l.On("PurgeOlderThan", mock.Anything, 30).Return(3, nil).Once()

	w := service.NewLedgerPurgeWorker(l, service.LedgerPurgeConfig{Interval: time.Hour, RetentionDays: 30})
	assert.Equal(t, 3, w.RunOnce(context.Background()))
	l.AssertExpectations(t)
}

func TestLedgerPurgeWorker_RunOnceError(t *testing.T) {
	l := new(mocks.MockImportLedger)
	l.On("PurgeOlderThan", mock.Anything, 7).Return(0, errors.New("redis gone"))

	w := service.NewLedgerPurgeWorker(l, service.LedgerPurgeConfig{Interval: time.Hour, RetentionDays: 7})
	assert.Zero(t, w.RunOnce(context.Background()))
}

func TestLedgerPurgeWorker_DisabledReturnsImmediately(t *testing.T) {
	l := new(mocks.MockImportLedger)
	w := service.NewLedgerPurgeWorker(l, service.LedgerPurgeConfig{Interval: time.Hour})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker did not return")
	}
	l.AssertNotCalled(t, "PurgeOlderThan", mock.Anything, mock.Anything)
}

func TestLedgerPurgeWorker_TicksUntilCancelled(t *testing.T) {
	l := new(mocks.MockImportLedger)
	ticked := make(chan struct{}, 1)
	l.On("PurgeOlderThan", mock.Anything, 1).Run(func(mock.Arguments) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}).Return(0, nil)

	w := service.NewLedgerPurgeWorker(l, service.LedgerPurgeConfig{Interval: 10 * time.Millisecond, RetentionDays: 1})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("worker never purged")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
