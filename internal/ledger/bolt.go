package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

const importsBucket = "imports"

// BoltLedger persists records as JSON values in a single bbolt bucket keyed
// by import id. Writes are serialized by bbolt's single writer transaction.
type BoltLedger struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltLedger opens (or creates) the ledger file at path.
func NewBoltLedger(path string) (*BoltLedger, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(importsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltLedger{db: db, now: time.Now}, nil
}

var _ port.ImportLedger = (*BoltLedger)(nil)

// Close releases the file lock.
func (l *BoltLedger) Close() error {
	return l.db.Close()
}

func (l *BoltLedger) Record(_ context.Context, rec *domain.ImportRecord) (string, error) {
	err := l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(importsBucket))

		var existing *domain.ImportRecord
		if rec.ImportID != "" {
			if data := bucket.Get([]byte(rec.ImportID)); data != nil {
				existing = &domain.ImportRecord{}
				if err := json.Unmarshal(data, existing); err != nil {
					return fmt.Errorf("unmarshaling import record: %w", err)
				}
			}
		}
		if err := prepare(rec, existing, l.now()); err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling import record: %w", err)
		}
		return bucket.Put([]byte(rec.ImportID), data)
	})
	if err != nil {
		return "", fmt.Errorf("ledger.Record: %w", err)
	}
	return rec.ImportID, nil
}

func (l *BoltLedger) Get(_ context.Context, importID string) (*domain.ImportRecord, error) {
	var rec *domain.ImportRecord
	err := l.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(importsBucket)).Get([]byte(importID))
		if data == nil {
			return domain.ErrImportNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *BoltLedger) List(_ context.Context, filter domain.ImportFilter) (*domain.ImportPage, error) {
	recs, err := l.all()
	if err != nil {
		return nil, fmt.Errorf("ledger.List: %w", err)
	}
	return paginate(recs, filter), nil
}

func (l *BoltLedger) PurgeOlderThan(_ context.Context, days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: negative days %d", days)
	}
	before := purgeCutoff(days, l.now())

	removed := 0
	err := l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(importsBucket))

		// Deleting inside ForEach is not allowed; collect keys first.
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var rec domain.ImportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling import record: %w", err)
			}
			if rec.StartTime.Before(before) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: %w", err)
	}
	return removed, nil
}

func (l *BoltLedger) Statistics(_ context.Context, period, groupBy string) (*domain.ImportStats, error) {
	if err := validGroupBy(groupBy); err != nil {
		return nil, err
	}
	since, err := cutoff(period, l.now())
	if err != nil {
		return nil, err
	}
	recs, err := l.all()
	if err != nil {
		return nil, fmt.Errorf("ledger.Statistics: %w", err)
	}
	return buildStats(recs, period, groupBy, since), nil
}

func (l *BoltLedger) all() ([]domain.ImportRecord, error) {
	recs := make([]domain.ImportRecord, 0)
	err := l.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(importsBucket)).ForEach(func(k, v []byte) error {
			var rec domain.ImportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshaling import record: %w", err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
