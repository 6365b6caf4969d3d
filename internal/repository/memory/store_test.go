package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/port"
	"collisionos/internal/repository/memory"
)

func TestStore_FindIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	tenantA, tenantB := uuid.New(), uuid.New()

	require.NoError(t, s.Create(ctx, tenantA, &domain.Customer{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}))

	got, err := s.Find(ctx, tenantA, port.CustomerCriteria{Email: "JANE@example.com"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Find(ctx, tenantB, port.CustomerCriteria{Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_FindANDsCriteria(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	tenant := uuid.New()
	require.NoError(t, s.Create(ctx, tenant, &domain.Customer{FirstName: "Ann", LastName: "Lee", Phone: "5551234567"}))

	got, err := s.Find(ctx, tenant, port.CustomerCriteria{Phone: "5551234567", FirstName: "ann", LastName: "LEE"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Find(ctx, tenant, port.CustomerCriteria{Phone: "5551234567", FirstName: "Bob", LastName: "Lee"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Find(ctx, tenant, port.CustomerCriteria{FirstName: "Ann"})
	require.NoError(t, err)
	assert.Empty(t, got, "a lone first name is not a criterion")
}

func TestStore_VehicleFindOrCreate(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	tenant, owner, other := uuid.New(), uuid.New(), uuid.New()

	v1, created, err := s.FindOrCreate(ctx, tenant, owner, &domain.Vehicle{VIN: "1HGCM82633A004352"})
	require.NoError(t, err)
	assert.True(t, created)

	v2, created, err := s.FindOrCreate(ctx, tenant, owner, &domain.Vehicle{VIN: "1HGCM82633A004352"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, v1.ID, v2.ID)

	_, created, err = s.FindOrCreate(ctx, tenant, other, &domain.Vehicle{VIN: "1HGCM82633A004352"})
	require.NoError(t, err)
	assert.True(t, created, "match is scoped to the owner")

	_, created, err = s.FindOrCreate(ctx, tenant, owner, &domain.Vehicle{})
	require.NoError(t, err)
	_, created2, err := s.FindOrCreate(ctx, tenant, owner, &domain.Vehicle{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, created2, "empty VIN never matches")

	_, vehicles, _ := s.Counts()
	assert.Equal(t, 4, vehicles)
}

func TestStore_CreateFromImport(t *testing.T) {
	s := memory.NewStore()
	result := &estimate.ImportResult{
		ImportID: "imp-7",
		Job:      estimate.JobSeed{Status: "estimate", Priority: "normal", Description: "Bumper cover"},
	}

	job, err := s.CreateFromImport(context.Background(), uuid.New(), result, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "imp-7", job.ImportID)
	assert.Equal(t, "Bumper cover", job.Description)
	assert.NotEmpty(t, job.JobNumber)

	_, _, jobs := s.Counts()
	assert.Equal(t, 1, jobs)
}
