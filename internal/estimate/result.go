package estimate

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// LineKind discriminates damage lines.
type LineKind string

const (
	LineKindPart  LineKind = "part"
	LineKindLabor LineKind = "labor"
)

// Damage line categories used for downstream grouping.
const (
	CategoryParts = "Parts"
	CategoryLabor = "Labor"
)

// NormalizedCustomer is the canonical customer fragment. It carries no
// identity until reconciled against storage.
type NormalizedCustomer struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Zip              string `json:"zip"`
	InsuranceCompany string `json:"insurance_company"`
}

// NormalizedVehicle is the canonical vehicle fragment. Year and Mileage are
// zero when absent.
type NormalizedVehicle struct {
	Year         int    `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	VIN          string `json:"vin"`
	License      string `json:"license"`
	Mileage      int    `json:"mileage"`
	Color        string `json:"color"`
	Engine       string `json:"engine"`
	Transmission string `json:"transmission"`
}

// DamageLine is a single part or labor entry.
type DamageLine struct {
	Kind          LineKind `json:"kind"`
	LineNumber    int      `json:"line_number"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	PartNumber    string   `json:"part_number"`
	PartType      string   `json:"part_type"`
	Quantity      float64  `json:"quantity"`
	UnitPrice     float64  `json:"unit_price"`
	Operation     string   `json:"operation"`
	LaborType     string   `json:"labor_type"`
	Hours         float64  `json:"hours"`
	Rate          float64  `json:"rate"`
	ExtendedPrice float64  `json:"extended_price"`
}

// JobSeed carries everything needed to open a repair job for the estimate.
type JobSeed struct {
	EstimateNumber   string  `json:"estimate_number"`
	EstimateDate     string  `json:"estimate_date"`
	Estimator        string  `json:"estimator"`
	ClaimNumber      string  `json:"claim_number"`
	PolicyNumber     string  `json:"policy_number"`
	InsuranceCompany string  `json:"insurance_company"`
	AdjusterName     string  `json:"adjuster_name"`
	Deductible       float64 `json:"deductible"`
	LossDate         string  `json:"loss_date"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	Priority         string  `json:"priority"`
}

// TotalSource records where an aggregate came from.
type TotalSource string

const (
	TotalSourceDocument TotalSource = "document"
	TotalSourceComputed TotalSource = "computed"
)

// FinancialSummary holds the estimate aggregates.
type FinancialSummary struct {
	PartsTotal float64 `json:"parts_total"`
	LaborTotal float64 `json:"labor_total"`
	TaxTotal   float64 `json:"tax_total"`
	GrandTotal float64 `json:"grand_total"`

	PartsSource TotalSource `json:"parts_source"`
	LaborSource TotalSource `json:"labor_source"`
	TaxSource   TotalSource `json:"tax_source"`
	GrandSource TotalSource `json:"grand_source"`
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is a single triggered rule.
type ValidationIssue struct {
	RuleKey  string   `json:"rule_key"`
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Penalty  int      `json:"penalty"`
	Message  string   `json:"message"`
}

// ValidationResult is the completeness/consistency verdict for an import.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Score    int               `json:"score"`
	Issues   []ValidationIssue `json:"issues"`
}

// DocumentInfo groups estimate and claim header data.
type DocumentInfo struct {
	EstimateNumber   string `json:"estimate_number"`
	EstimateDate     string `json:"estimate_date"`
	Estimator        string `json:"estimator"`
	ShopName         string `json:"shop_name"`
	ClaimNumber      string `json:"claim_number"`
	PolicyNumber     string `json:"policy_number"`
	InsuranceCompany string `json:"insurance_company"`
	LossDate         string `json:"loss_date"`
}

// DamageSummary groups damage lines with their aggregates.
type DamageSummary struct {
	Lines      []DamageLine     `json:"lines"`
	PartCount  int              `json:"part_count"`
	LaborCount int              `json:"labor_count"`
	Totals     FinancialSummary `json:"totals"`
}

// Metadata describes the ingestion call that produced a result.
type Metadata struct {
	ImportID         string    `json:"import_id"`
	FileName         string    `json:"file_name"`
	FileType         string    `json:"file_type"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	ParsedAt         time.Time `json:"parsed_at"`
}

// CustomerRef is a reconciled customer reference.
type CustomerRef struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Created  bool      `json:"created"`
}

// VehicleRef is a reconciled vehicle reference.
type VehicleRef struct {
	ID      uuid.UUID `json:"id"`
	VIN     string    `json:"vin"`
	Created bool      `json:"created"`
}

// JobRef references the job created for an import.
type JobRef struct {
	ID        uuid.UUID `json:"id"`
	JobNumber string    `json:"job_number"`
}

// ReconciliationOutcome reports which records the reconciler resolved or
// created. Vehicle and Job are nil when a later stage failed.
type ReconciliationOutcome struct {
	Customer *CustomerRef `json:"customer,omitempty"`
	Vehicle  *VehicleRef  `json:"vehicle,omitempty"`
	Job      *JobRef      `json:"job,omitempty"`
}

// AutoCreationError is the structured form of a failed auto-creation.
type AutoCreationError struct {
	Code                       string `json:"code"`
	Stage                      string `json:"stage,omitempty"`
	Message                    string `json:"message"`
	RequiresManualIntervention bool   `json:"requires_manual_intervention"`
}

// ImportResult is the full output of one ingestion call.
type ImportResult struct {
	ImportID   string             `json:"import_id"`
	Customer   NormalizedCustomer `json:"customer"`
	Vehicle    NormalizedVehicle  `json:"vehicle"`
	Job        JobSeed            `json:"job"`
	Document   DocumentInfo       `json:"document"`
	Damage     DamageSummary      `json:"damage"`
	Validation ValidationResult   `json:"validation"`
	Metadata   Metadata           `json:"metadata"`

	AutoCreationRequested      bool                   `json:"auto_creation_requested"`
	AutoCreationSuccess        bool                   `json:"auto_creation_success"`
	RequiresManualIntervention bool                   `json:"requires_manual_intervention"`
	Reconciliation             *ReconciliationOutcome `json:"reconciliation,omitempty"`
	AutoCreationError          *AutoCreationError     `json:"auto_creation_error,omitempty"`
}

// Clone returns a deep copy of r. It returns nil for a nil result.
func (r *ImportResult) Clone() *ImportResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Damage.Lines = slices.Clone(r.Damage.Lines)
	out.Validation.Errors = slices.Clone(r.Validation.Errors)
	out.Validation.Warnings = slices.Clone(r.Validation.Warnings)
	out.Validation.Issues = slices.Clone(r.Validation.Issues)
	if r.Reconciliation != nil {
		rec := ReconciliationOutcome{}
		if c := r.Reconciliation.Customer; c != nil {
			cc := *c
			rec.Customer = &cc
		}
		if v := r.Reconciliation.Vehicle; v != nil {
			vv := *v
			rec.Vehicle = &vv
		}
		if j := r.Reconciliation.Job; j != nil {
			jj := *j
			rec.Job = &jj
		}
		out.Reconciliation = &rec
	}
	if r.AutoCreationError != nil {
		e := *r.AutoCreationError
		out.AutoCreationError = &e
	}
	return &out
}
