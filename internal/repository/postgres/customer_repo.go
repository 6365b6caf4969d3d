package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerStore.
func NewCustomerRepo(db *sqlx.DB) port.CustomerStore {
	return &customerRepo{db: db}
}

func (r *customerRepo) Find(ctx context.Context, tenantID uuid.UUID, criteria port.CustomerCriteria) ([]domain.Customer, error) {
	if criteria.IsEmpty() {
		return nil, nil
	}

	clauses := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if criteria.ID != uuid.Nil {
		add("id = $%d", criteria.ID)
	}
	if criteria.Email != "" {
		add("LOWER(email) = $%d", strings.ToLower(criteria.Email))
	}
	if criteria.Phone != "" {
		add("phone = $%d", criteria.Phone)
	}
	if criteria.FirstName != "" && criteria.LastName != "" {
		add("LOWER(first_name) = $%d", strings.ToLower(criteria.FirstName))
		add("LOWER(last_name) = $%d", strings.ToLower(criteria.LastName))
	}

	query := "SELECT * FROM customers WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at ASC"

	var customers []domain.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, fmt.Errorf("customerRepo.Find: %w", err)
	}
	return customers, nil
}

func (r *customerRepo) Create(ctx context.Context, tenantID uuid.UUID, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.TenantID = tenantID
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers
		(id, tenant_id, first_name, last_name, phone, email, address, city, state, zip,
		 insurance_company, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.TenantID, customer.FirstName, customer.LastName, customer.Phone,
		customer.Email, customer.Address, customer.City, customer.State, customer.Zip,
		customer.InsuranceCompany, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}
