package noop

import (
	"context"
	"log"

	"collisionos/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a Notifier that only logs notices.
func NewNoopNotifier() port.Notifier {
	return &noopNotifier{}
}

func (n *noopNotifier) NotifyManualIntervention(_ context.Context, notice port.ManualInterventionNotice) error {
	log.Printf("[NOOP EMAIL] Manual intervention for import %s (%s, tenant %s) at stage %s: %s",
		notice.ImportID, notice.FileName, notice.TenantID, notice.Stage, notice.Reason)
	return nil
}
