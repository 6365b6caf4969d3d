package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"collisionos/internal/domain"
	"collisionos/internal/port"
)

// DefaultRedisPrefix namespaces ledger keys when none is configured.
const DefaultRedisPrefix = "collisionos:imports"

const maxRecordRetries = 5

// Both *redis.Client and *redis.Tx satisfy these.
type (
	hashGetter interface {
		HGet(ctx context.Context, key, field string) *redis.StringCmd
	}
	txPipeliner interface {
		TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	}
)

// RedisLedger stores each record as JSON in a hash keyed by import id, with
// a sorted set scored by start time (unix millis) for ordering and purges.
type RedisLedger struct {
	client  *redis.Client
	records string
	byStart string
	now     func() time.Time
}

// NewRedisLedger creates a ledger backed by the given client. An empty prefix
// falls back to DefaultRedisPrefix.
func NewRedisLedger(client *redis.Client, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisLedger{
		client:  client,
		records: prefix + ":records",
		byStart: prefix + ":by_start",
		now:     time.Now,
	}
}

var _ port.ImportLedger = (*RedisLedger)(nil)

func (l *RedisLedger) Record(ctx context.Context, rec *domain.ImportRecord) (string, error) {
	if rec.ImportID == "" {
		// New ids cannot collide with a stored record; skip the watch.
		if err := prepare(rec, nil, l.now()); err != nil {
			return "", err
		}
		if err := l.write(ctx, l.client, rec); err != nil {
			return "", fmt.Errorf("ledger.Record: %w", err)
		}
		return rec.ImportID, nil
	}

	txf := func(tx *redis.Tx) error {
		existing, err := l.load(ctx, tx, rec.ImportID)
		if err != nil && !errors.Is(err, domain.ErrImportNotFound) {
			return err
		}
		if err := prepare(rec, existing, l.now()); err != nil {
			return err
		}
		return l.write(ctx, tx, rec)
	}

	for i := 0; i < maxRecordRetries; i++ {
		err := l.client.Watch(ctx, txf, l.records)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("ledger.Record: %w", err)
		}
		return rec.ImportID, nil
	}
	return "", fmt.Errorf("ledger.Record: %s: too much contention", rec.ImportID)
}

func (l *RedisLedger) write(ctx context.Context, c txPipeliner, rec *domain.ImportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling import record: %w", err)
	}
	_, err = c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, l.records, rec.ImportID, data)
		pipe.ZAdd(ctx, l.byStart, redis.Z{Score: float64(rec.StartTime.UnixMilli()), Member: rec.ImportID})
		return nil
	})
	return err
}

func (l *RedisLedger) load(ctx context.Context, c hashGetter, importID string) (*domain.ImportRecord, error) {
	data, err := c.HGet(ctx, l.records, importID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrImportNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec domain.ImportRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding import record %s: %w", importID, err)
	}
	return &rec, nil
}

func (l *RedisLedger) Get(ctx context.Context, importID string) (*domain.ImportRecord, error) {
	rec, err := l.load(ctx, l.client, importID)
	if errors.Is(err, domain.ErrImportNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("ledger.Get: %w", err)
	}
	return rec, nil
}

func (l *RedisLedger) List(ctx context.Context, filter domain.ImportFilter) (*domain.ImportPage, error) {
	ids, err := l.client.ZRevRange(ctx, l.byStart, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger.List: %w", err)
	}
	recs, err := l.fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ledger.List: %w", err)
	}
	return paginate(recs, filter), nil
}

func (l *RedisLedger) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: negative days %d", days)
	}
	before := purgeCutoff(days, l.now())
	ids, err := l.client.ZRangeByScore(ctx, l.byStart, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, l.records, ids...)
		pipe.ZRem(ctx, l.byStart, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ledger.PurgeOlderThan: %w", err)
	}
	return len(ids), nil
}

func (l *RedisLedger) Statistics(ctx context.Context, period, groupBy string) (*domain.ImportStats, error) {
	if err := validGroupBy(groupBy); err != nil {
		return nil, err
	}
	since, err := cutoff(period, l.now())
	if err != nil {
		return nil, err
	}

	from := "-inf"
	if !since.IsZero() {
		from = strconv.FormatInt(since.UnixMilli(), 10)
	}
	ids, err := l.client.ZRangeByScore(ctx, l.byStart, &redis.ZRangeBy{Min: from, Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger.Statistics: %w", err)
	}
	recs, err := l.fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ledger.Statistics: %w", err)
	}
	return buildStats(recs, period, groupBy, since), nil
}

// fetch loads records for ids, skipping ids whose hash entry is gone.
func (l *RedisLedger) fetch(ctx context.Context, ids []string) ([]domain.ImportRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := l.client.HMGet(ctx, l.records, ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ImportRecord, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec domain.ImportRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decoding import record %s: %w", ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}
