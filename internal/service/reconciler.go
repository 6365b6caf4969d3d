package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/normalize"
	"collisionos/internal/port"
)

// Scope carries the caller's tenant and user identity.
type Scope struct {
	TenantID string
	UserID   string
}

// ReconcilerConfig controls tenant fallback.
type ReconcilerConfig struct {
	DevelopmentMode bool
	DevTenantID     uuid.UUID
}

// Reconciler resolves an import's customer and vehicle against storage and
// opens a job for it.
type Reconciler interface {
	// Reconcile uses result.Customer, result.Vehicle and result.Job. On a
	// vehicle or job failure the returned outcome still carries what was
	// resolved before it, alongside a *ReconciliationError.
	Reconcile(ctx context.Context, result *estimate.ImportResult, scope Scope) (*estimate.ReconciliationOutcome, error)
	// ResolveTenant applies the development-mode fallback.
	ResolveTenant(scope Scope) (uuid.UUID, error)
}

type reconciler struct {
	customers port.CustomerStore
	vehicles  port.VehicleStore
	jobs      port.JobStore
	cfg       ReconcilerConfig
}

// NewReconciler creates a new Reconciler.
func NewReconciler(customers port.CustomerStore, vehicles port.VehicleStore, jobs port.JobStore, cfg ReconcilerConfig) Reconciler {
	return &reconciler{
		customers: customers,
		vehicles:  vehicles,
		jobs:      jobs,
		cfg:       cfg,
	}
}

func (r *reconciler) ResolveTenant(scope Scope) (uuid.UUID, error) {
	if scope.TenantID == "" {
		if !r.cfg.DevelopmentMode {
			return uuid.Nil, &TenantScopeError{Operation: "reconciler.Reconcile"}
		}
		log.Printf("WARN: reconciler.ResolveTenant: no tenant in scope, using development tenant %s", r.cfg.DevTenantID)
		return r.cfg.DevTenantID, nil
	}
	id, err := uuid.Parse(scope.TenantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reconciler.ResolveTenant: %w: %q", domain.ErrInvalidTenantID, scope.TenantID)
	}
	return id, nil
}

func (r *reconciler) Reconcile(ctx context.Context, result *estimate.ImportResult, scope Scope) (*estimate.ReconciliationOutcome, error) {
	tenantID, err := r.ResolveTenant(scope)
	if err != nil {
		return nil, err
	}

	outcome := &estimate.ReconciliationOutcome{}

	customer, created, err := r.resolveCustomer(ctx, tenantID, result.Customer)
	if err != nil {
		return outcome, &ReconciliationError{Stage: StageCustomer, Err: err}
	}
	outcome.Customer = &estimate.CustomerRef{
		ID:       customer.ID,
		FullName: customer.FullName(),
		Email:    customer.Email,
		Phone:    customer.Phone,
		Created:  created,
	}

	vehicle, created, err := r.vehicles.FindOrCreate(ctx, tenantID, customer.ID, vehicleFrom(result.Vehicle))
	if err != nil {
		log.Printf("reconciler.Reconcile: vehicle stage failed for import %s: %v", result.ImportID, err)
		return outcome, &ReconciliationError{Stage: StageVehicle, Err: err}
	}
	outcome.Vehicle = &estimate.VehicleRef{ID: vehicle.ID, VIN: vehicle.VIN, Created: created}

	job, err := r.jobs.CreateFromImport(ctx, tenantID, result, customer.ID, vehicle.ID)
	if err != nil {
		log.Printf("reconciler.Reconcile: job stage failed for import %s: %v", result.ImportID, err)
		return outcome, &ReconciliationError{Stage: StageJob, Err: err}
	}
	outcome.Job = &estimate.JobRef{ID: job.ID, JobNumber: job.JobNumber}

	return outcome, nil
}

// resolveCustomer tries email, then phone, then the exact name pair. The
// first lookup with a hit wins.
func (r *reconciler) resolveCustomer(ctx context.Context, tenantID uuid.UUID, c estimate.NormalizedCustomer) (*domain.Customer, bool, error) {
	var lookups []port.CustomerCriteria
	if c.Email != "" {
		lookups = append(lookups, port.CustomerCriteria{Email: c.Email})
	}
	if c.Phone != "" {
		lookups = append(lookups, port.CustomerCriteria{Phone: c.Phone})
	}
	if c.FirstName != "" && c.LastName != "" {
		lookups = append(lookups, port.CustomerCriteria{FirstName: c.FirstName, LastName: c.LastName})
	}

	for _, criteria := range lookups {
		found, err := r.customers.Find(ctx, tenantID, criteria)
		if err != nil {
			return nil, false, err
		}
		if len(found) > 0 {
			return &found[0], false, nil
		}
	}

	customer := &domain.Customer{
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		Email:            c.Email,
		Address:          c.Address,
		City:             c.City,
		State:            c.State,
		Zip:              c.Zip,
		InsuranceCompany: c.InsuranceCompany,
	}
	if err := r.customers.Create(ctx, tenantID, customer); err != nil {
		return nil, false, err
	}
	return customer, true, nil
}

func vehicleFrom(v estimate.NormalizedVehicle) *domain.Vehicle {
	vin := v.VIN
	if normalize.IsPlaceholderVIN(vin) {
		vin = ""
	}
	return &domain.Vehicle{
		Year:         v.Year,
		Make:         v.Make,
		Model:        v.Model,
		VIN:          vin,
		License:      v.License,
		Mileage:      v.Mileage,
		Color:        v.Color,
		Engine:       v.Engine,
		Transmission: v.Transmission,
	}
}

// isTenantScopeError reports whether err is a missing-tenant failure.
func isTenantScopeError(err error) bool {
	var tse *TenantScopeError
	return errors.As(err, &tse)
}
