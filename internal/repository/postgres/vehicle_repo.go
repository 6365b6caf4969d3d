package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

type vehicleRepo struct {
	db *sqlx.DB
}

// NewVehicleRepo creates a new PostgreSQL-backed VehicleStore.
func NewVehicleRepo(db *sqlx.DB) port.VehicleStore {
	return &vehicleRepo{db: db}
}

func (r *vehicleRepo) FindOrCreate(ctx context.Context, tenantID, ownerID uuid.UUID, v *domain.Vehicle) (*domain.Vehicle, bool, error) {
	if v.VIN != "" {
		var existing domain.Vehicle
		err := r.db.GetContext(ctx, &existing,
			`SELECT * FROM vehicles WHERE tenant_id = $1 AND customer_id = $2 AND vin = $3
			 ORDER BY created_at ASC LIMIT 1`,
			tenantID, ownerID, v.VIN)
		if err == nil {
			return &existing, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("vehicleRepo.FindOrCreate lookup: %w", err)
		}
	}

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.TenantID = tenantID
	v.CustomerID = ownerID
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	query := `INSERT INTO vehicles
		(id, tenant_id, customer_id, year, make, model, vin, license, mileage, color,
		 engine, transmission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.TenantID, v.CustomerID, v.Year, v.Make, v.Model, v.VIN, v.License, v.Mileage,
		v.Color, v.Engine, v.Transmission, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("vehicleRepo.FindOrCreate: %w", err)
	}
	return v, true, nil
}
