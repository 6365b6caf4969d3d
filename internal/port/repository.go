package port

import (
	"context"

	"github.com/google/uuid"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
)

// CustomerCriteria selects customers by exact match. Set fields are ANDed;
// FirstName and LastName only apply as a pair.
type CustomerCriteria struct {
	ID        uuid.UUID
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

// IsEmpty reports whether no criterion is set.
func (c CustomerCriteria) IsEmpty() bool {
	return c.ID == uuid.Nil && c.Email == "" && c.Phone == "" && (c.FirstName == "" || c.LastName == "")
}

// CustomerStore defines the contract for customer persistence.
// All methods are scoped by tenantID.
type CustomerStore interface {
	Find(ctx context.Context, tenantID uuid.UUID, criteria CustomerCriteria) ([]domain.Customer, error)
	Create(ctx context.Context, tenantID uuid.UUID, customer *domain.Customer) error
}

// VehicleStore defines the contract for vehicle persistence.
type VehicleStore interface {
	// FindOrCreate returns the owner's vehicle with the same VIN, or stores v
	// as a new vehicle. The bool reports whether a new vehicle was created.
	// An empty VIN never matches.
	FindOrCreate(ctx context.Context, tenantID, ownerID uuid.UUID, v *domain.Vehicle) (*domain.Vehicle, bool, error)
}

// JobStore defines the contract for job persistence.
type JobStore interface {
	CreateFromImport(ctx context.Context, tenantID uuid.UUID, result *estimate.ImportResult, customerID, vehicleID uuid.UUID) (*domain.Job, error)
}
