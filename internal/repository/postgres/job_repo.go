package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobStore.
func NewJobRepo(db *sqlx.DB) port.JobStore {
	return &jobRepo{db: db}
}

func (r *jobRepo) CreateFromImport(ctx context.Context, tenantID uuid.UUID, result *estimate.ImportResult, customerID, vehicleID uuid.UUID) (*domain.Job, error) {
	job := domain.NewJobFromImport(tenantID, result, customerID, vehicleID, time.Now().UTC())

	query := `INSERT INTO jobs
		(id, tenant_id, customer_id, vehicle_id, import_id, job_number, estimate_number,
		 claim_number, policy_number, insurance_company, adjuster_name, deductible, description,
		 status, priority, parts_total, labor_total, tax_total, grand_total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.TenantID, job.CustomerID, job.VehicleID, job.ImportID, job.JobNumber,
		job.EstimateNumber, job.ClaimNumber, job.PolicyNumber, job.InsuranceCompany,
		job.AdjusterName, job.Deductible, job.Description, job.Status, job.Priority,
		job.PartsTotal, job.LaborTotal, job.TaxTotal, job.GrandTotal, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.CreateFromImport: %w", err)
	}
	return job, nil
}
