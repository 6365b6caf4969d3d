package port

import (
	"context"

	"collisionos/internal/domain"
)

// ImportLedger records every ingestion attempt. Implementations must be
// safe for concurrent use; List and Statistics never mutate state.
type ImportLedger interface {
	// Record inserts or updates a record. An empty ImportID is replaced with
	// a generated one, which is returned.
	Record(ctx context.Context, rec *domain.ImportRecord) (string, error)
	Get(ctx context.Context, importID string) (*domain.ImportRecord, error)
	List(ctx context.Context, filter domain.ImportFilter) (*domain.ImportPage, error)
	PurgeOlderThan(ctx context.Context, days int) (int, error)
	Statistics(ctx context.Context, period, groupBy string) (*domain.ImportStats, error)
}
