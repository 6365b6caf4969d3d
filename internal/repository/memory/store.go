// Package memory provides in-process customer, vehicle and job stores for
// development runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/port"
)

// Store holds customers, vehicles and jobs behind one mutex. It satisfies
// CustomerStore, VehicleStore and JobStore.
type Store struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]domain.Customer
	vehicles  map[uuid.UUID]domain.Vehicle
	jobs      map[uuid.UUID]domain.Job
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		customers: make(map[uuid.UUID]domain.Customer),
		vehicles:  make(map[uuid.UUID]domain.Vehicle),
		jobs:      make(map[uuid.UUID]domain.Job),
	}
}

var (
	_ port.CustomerStore = (*Store)(nil)
	_ port.VehicleStore  = (*Store)(nil)
	_ port.JobStore      = (*Store)(nil)
)

func (s *Store) Find(_ context.Context, tenantID uuid.UUID, criteria port.CustomerCriteria) ([]domain.Customer, error) {
	if criteria.IsEmpty() {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Customer
	for _, c := range s.customers {
		if c.TenantID == tenantID && customerMatches(&c, criteria) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func customerMatches(c *domain.Customer, criteria port.CustomerCriteria) bool {
	if criteria.ID != uuid.Nil && c.ID != criteria.ID {
		return false
	}
	if criteria.Email != "" && !strings.EqualFold(c.Email, criteria.Email) {
		return false
	}
	if criteria.Phone != "" && c.Phone != criteria.Phone {
		return false
	}
	if criteria.FirstName != "" && criteria.LastName != "" {
		if !strings.EqualFold(c.FirstName, criteria.FirstName) || !strings.EqualFold(c.LastName, criteria.LastName) {
			return false
		}
	}
	return true
}

func (s *Store) Create(_ context.Context, tenantID uuid.UUID, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.TenantID = tenantID
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	s.mu.Lock()
	s.customers[customer.ID] = *customer
	s.mu.Unlock()
	return nil
}

func (s *Store) FindOrCreate(_ context.Context, tenantID, ownerID uuid.UUID, v *domain.Vehicle) (*domain.Vehicle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.VIN != "" {
		for _, existing := range s.vehicles {
			if existing.TenantID == tenantID && existing.CustomerID == ownerID && existing.VIN == v.VIN {
				found := existing
				return &found, false, nil
			}
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
	s.vehicles[v.ID] = *v
	return v, true, nil
}

func (s *Store) CreateFromImport(_ context.Context, tenantID uuid.UUID, result *estimate.ImportResult, customerID, vehicleID uuid.UUID) (*domain.Job, error) {
	job := domain.NewJobFromImport(tenantID, result, customerID, vehicleID, time.Now().UTC())

	s.mu.Lock()
	s.jobs[job.ID] = *job
	s.mu.Unlock()
	return job, nil
}

// Counts reports how many customers, vehicles and jobs are stored.
func (s *Store) Counts() (customers, vehicles, jobs int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), len(s.vehicles), len(s.jobs)
}
