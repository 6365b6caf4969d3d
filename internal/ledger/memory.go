package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

// MemoryLedger is a mutex-guarded in-process ledger. Its lifetime is the
// owning process.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]domain.ImportRecord
	now     func() time.Time
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		records: make(map[string]domain.ImportRecord),
		now:     time.Now,
	}
}

var _ port.ImportLedger = (*MemoryLedger)(nil)

func (l *MemoryLedger) Record(_ context.Context, rec *domain.ImportRecord) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var existing *domain.ImportRecord
	if rec.ImportID != "" {
		if cur, ok := l.records[rec.ImportID]; ok {
			existing = &cur
		}
	}
	if err := prepare(rec, existing, l.now()); err != nil {
		return "", fmt.Errorf("ledger.Record: %w", err)
	}
	l.records[rec.ImportID] = cloneRecord(*rec)
	return rec.ImportID, nil
}

func (l *MemoryLedger) Get(_ context.Context, importID string) (*domain.ImportRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[importID]
	if !ok {
		return nil, domain.ErrImportNotFound
	}
	rec = cloneRecord(rec)
	return &rec, nil
}

func (l *MemoryLedger) List(_ context.Context, filter domain.ImportFilter) (*domain.ImportPage, error) {
	return paginate(l.snapshot(), filter), nil
}

func (l *MemoryLedger) PurgeOlderThan(_ context.Context, days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: negative days %d", days)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	before := purgeCutoff(days, l.now())
	removed := 0
	for id, rec := range l.records {
		if rec.StartTime.Before(before) {
			delete(l.records, id)
			removed++
		}
	}
	return removed, nil
}

func (l *MemoryLedger) Statistics(_ context.Context, period, groupBy string) (*domain.ImportStats, error) {
	if err := validGroupBy(groupBy); err != nil {
		return nil, err
	}
	since, err := cutoff(period, l.now())
	if err != nil {
		return nil, err
	}
	return buildStats(l.snapshot(), period, groupBy, since), nil
}

func (l *MemoryLedger) snapshot() []domain.ImportRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.ImportRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, cloneRecord(r))
	}
	return out
}

// cloneRecord detaches a record from caller-owned memory so stored entries
// behave like the serialized backends.
func cloneRecord(rec domain.ImportRecord) domain.ImportRecord {
	if rec.EndTime != nil {
		end := *rec.EndTime
		rec.EndTime = &end
	}
	rec.Result = rec.Result.Clone()
	return rec
}
