package export

import (
	"context"
	"fmt"

	"collisionos/internal/domain"
	"collisionos/internal/ledger"
	"collisionos/internal/port"
)

// Collect pages through the ledger and returns every record matching
// filter, newest first.
func Collect(ctx context.Context, l port.ImportLedger, filter domain.ImportFilter) ([]domain.ImportRecord, error) {
	filter.PageSize = ledger.MaxPageSize
	var out []domain.ImportRecord
	for page := 1; ; page++ {
		filter.Page = page
		p, err := l.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("export.Collect: %w", err)
		}
		out = append(out, p.Records...)
		if page >= p.TotalPages {
			return out, nil
		}
	}
}
