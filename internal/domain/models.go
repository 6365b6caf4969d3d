package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"collisionos/internal/estimate"
)

// Customer is a vehicle owner known to a shop (tenant).
type Customer struct {
	ID               uuid.UUID `db:"id" json:"id"`
	TenantID         uuid.UUID `db:"tenant_id" json:"tenant_id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Phone            string    `db:"phone" json:"phone"`
	Email            string    `db:"email" json:"email"`
	Address          string    `db:"address" json:"address"`
	City             string    `db:"city" json:"city"`
	State            string    `db:"state" json:"state"`
	Zip              string    `db:"zip" json:"zip"`
	InsuranceCompany string    `db:"insurance_company" json:"insurance_company"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name with a single space.
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// Vehicle is a customer-owned vehicle.
type Vehicle struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	CustomerID   uuid.UUID `db:"customer_id" json:"customer_id"`
	Year         int       `db:"year" json:"year"`
	Make         string    `db:"make" json:"make"`
	Model        string    `db:"model" json:"model"`
	VIN          string    `db:"vin" json:"vin"`
	License      string    `db:"license" json:"license"`
	Mileage      int       `db:"mileage" json:"mileage"`
	Color        string    `db:"color" json:"color"`
	Engine       string    `db:"engine" json:"engine"`
	Transmission string    `db:"transmission" json:"transmission"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Job is a repair job opened from an imported estimate.
type Job struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	TenantID         uuid.UUID   `db:"tenant_id" json:"tenant_id"`
	CustomerID       uuid.UUID   `db:"customer_id" json:"customer_id"`
	VehicleID        uuid.UUID   `db:"vehicle_id" json:"vehicle_id"`
	ImportID         string      `db:"import_id" json:"import_id"`
	JobNumber        string      `db:"job_number" json:"job_number"`
	EstimateNumber   string      `db:"estimate_number" json:"estimate_number"`
	ClaimNumber      string      `db:"claim_number" json:"claim_number"`
	PolicyNumber     string      `db:"policy_number" json:"policy_number"`
	InsuranceCompany string      `db:"insurance_company" json:"insurance_company"`
	AdjusterName     string      `db:"adjuster_name" json:"adjuster_name"`
	Deductible       float64     `db:"deductible" json:"deductible"`
	Description      string      `db:"description" json:"description"`
	Status           JobStatus   `db:"status" json:"status"`
	Priority         JobPriority `db:"priority" json:"priority"`
	PartsTotal       float64     `db:"parts_total" json:"parts_total"`
	LaborTotal       float64     `db:"labor_total" json:"labor_total"`
	TaxTotal         float64     `db:"tax_total" json:"tax_total"`
	GrandTotal       float64     `db:"grand_total" json:"grand_total"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// ImportRecord is one ingestion attempt tracked by the import ledger.
type ImportRecord struct {
	ImportID         string                 `json:"import_id"`
	FileName         string                 `json:"file_name"`
	FileType         FileType               `json:"file_type"`
	Status           ImportStatus           `json:"status"`
	StartTime        time.Time              `json:"start_time"`
	EndTime          *time.Time             `json:"end_time,omitempty"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	UserID           string                 `json:"user_id,omitempty"`
	TenantID         string                 `json:"tenant_id,omitempty"`
	Error            string                 `json:"error,omitempty"`
	Result           *estimate.ImportResult `json:"result,omitempty"`
}

// ImportFilter narrows a ledger listing. Zero values mean "any".
type ImportFilter struct {
	Status   ImportStatus
	UserID   string
	Page     int
	PageSize int
}

// ImportPage is one page of ledger records, newest first.
type ImportPage struct {
	Records    []ImportRecord `json:"records"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ImportGroup is one bucket of a grouped statistics query.
type ImportGroup struct {
	Key                 string  `json:"key"`
	Count               int     `json:"count"`
	SuccessCount        int     `json:"success_count"`
	FailureCount        int     `json:"failure_count"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}

// ImportStats aggregates ledger records over a time window.
type ImportStats struct {
	Period              string           `json:"period"`
	GroupBy             string           `json:"group_by,omitempty"`
	TotalImports        int              `json:"total_imports"`
	SuccessCount        int              `json:"success_count"`
	FailureCount        int              `json:"failure_count"`
	ProcessingCount     int              `json:"processing_count"`
	AvgProcessingTimeMs float64          `json:"avg_processing_time_ms"`
	CountsByFileType    map[FileType]int `json:"counts_by_file_type"`
	Groups              []ImportGroup    `json:"groups,omitempty"`
}

// NewJobNumber derives a human-readable job number from the creation date
// and the job id.
func NewJobNumber(createdAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("JOB-%s-%s", createdAt.UTC().Format("20060102"), strings.ToUpper(id.String()[:8]))
}

// NewJobFromImport builds an unsaved job from an import's seed and totals.
func NewJobFromImport(tenantID uuid.UUID, result *estimate.ImportResult, customerID, vehicleID uuid.UUID, now time.Time) *Job {
	id := uuid.New()
	seed := result.Job
	totals := result.Damage.Totals

	status := JobStatus(seed.Status)
	if status == "" {
		status = JobStatusEstimate
	}
	priority := JobPriority(seed.Priority)
	if priority == "" {
		priority = JobPriorityNormal
	}

	return &Job{
		ID:               id,
		TenantID:         tenantID,
		CustomerID:       customerID,
		VehicleID:        vehicleID,
		ImportID:         result.ImportID,
		JobNumber:        NewJobNumber(now, id),
		EstimateNumber:   seed.EstimateNumber,
		ClaimNumber:      seed.ClaimNumber,
		PolicyNumber:     seed.PolicyNumber,
		InsuranceCompany: seed.InsuranceCompany,
		AdjusterName:     seed.AdjusterName,
		Deductible:       seed.Deductible,
		Description:      seed.Description,
		Status:           status,
		Priority:         priority,
		PartsTotal:       totals.PartsTotal,
		LaborTotal:       totals.LaborTotal,
		TaxTotal:         totals.TaxTotal,
		GrandTotal:       totals.GrandTotal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
