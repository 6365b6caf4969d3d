package port

import "context"

// ManualInterventionNotice describes an import that parsed but could not be
// turned into customer, vehicle and job records automatically.
type ManualInterventionNotice struct {
	ImportID       string
	TenantID       string
	FileName       string
	Stage          string
	Reason         string
	CustomerName   string
	EstimateNumber string
}

// Notifier delivers operator notifications.
type Notifier interface {
	NotifyManualIntervention(ctx context.Context, notice ManualInterventionNotice) error
}
