package service

import (
	"fmt"

	"collisionos/internal/domain"
)

// TenantScopeError reports a write attempted without a tenant outside
// development mode.
type TenantScopeError struct {
	Operation string
}

func (e *TenantScopeError) Error() string {
	return fmt.Sprintf("%s: tenant scope required", e.Operation)
}

func (e *TenantScopeError) Unwrap() error {
	return domain.ErrTenantScopeMissing
}

// ReconciliationStage names the find-or-create step that failed.
type ReconciliationStage string

const (
	StageCustomer ReconciliationStage = "customer"
	StageVehicle  ReconciliationStage = "vehicle"
	StageJob      ReconciliationStage = "job"
)

// ReconciliationError wraps a store failure during reconciliation.
type ReconciliationError struct {
	Stage ReconciliationStage
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// Auto-creation error codes reported on ImportResult.
const (
	CodeScoreBelowThreshold  = "score_below_threshold"
	CodeReconciliationFailed = "reconciliation_failed"
	CodeTenantScopeMissing   = "tenant_scope_missing"
)
