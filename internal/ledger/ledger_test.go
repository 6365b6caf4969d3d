package ledger_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/ledger"
	"collisionos/internal/port"
)

type backend struct {
	name string
	open func(t *testing.T) port.ImportLedger
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) port.ImportLedger { return ledger.NewMemoryLedger() }},
		{"redis", func(t *testing.T) port.ImportLedger {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("failed to start miniredis: %v", err)
			}
			t.Cleanup(mr.Close)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return ledger.NewRedisLedger(client, "test:imports")
		}},
		{"bolt", func(t *testing.T) port.ImportLedger {
			l, err := ledger.NewBoltLedger(filepath.Join(t.TempDir(), "ledger.db"))
			require.NoError(t, err)
			t.Cleanup(func() { l.Close() })
			return l
		}},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, l port.ImportLedger)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

func record(t *testing.T, l port.ImportLedger, rec domain.ImportRecord) string {
	t.Helper()
	id, err := l.Record(context.Background(), &rec)
	require.NoError(t, err)
	return id
}

func TestLedger_RecordGeneratesIDAndDefaults(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		ctx := context.Background()
		rec := &domain.ImportRecord{FileName: "a.xml", FileType: domain.FileTypeBMS}

		id, err := l.Record(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rec.ImportID)

		got, err := l.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ImportStatusProcessing, got.Status)
		assert.False(t, got.StartTime.IsZero())
		assert.Equal(t, "a.xml", got.FileName)
	})
}

func TestLedger_CallerSuppliedIDHonoured(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		id := record(t, l, domain.ImportRecord{ImportID: "imp-1", FileType: domain.FileTypeEMS})
		assert.Equal(t, "imp-1", id)
	})
}

func TestLedger_GetUnknown(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		_, err := l.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrImportNotFound)
	})
}

func TestLedger_TerminalStatusIsFinal(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		ctx := context.Background()
		start := time.Now().Add(-time.Minute).UTC()
		record(t, l, domain.ImportRecord{ImportID: "imp-1", StartTime: start})

		end := time.Now().UTC()
		record(t, l, domain.ImportRecord{
			ImportID:         "imp-1",
			Status:           domain.ImportStatusCompleted,
			EndTime:          &end,
			ProcessingTimeMs: 42,
		})

		got, err := l.Get(ctx, "imp-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ImportStatusCompleted, got.Status)
		assert.True(t, got.StartTime.Equal(start), "start time carried over from the processing record")

		for _, status := range []domain.ImportStatus{
			domain.ImportStatusProcessing,
			domain.ImportStatusFailed,
			domain.ImportStatusCompleted,
		} {
			_, err = l.Record(ctx, &domain.ImportRecord{ImportID: "imp-1", Status: status, Error: "late write"})
			assert.ErrorIs(t, err, domain.ErrImportFinalized, "overwrite with %s", status)
		}

		got, err = l.Get(ctx, "imp-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ImportStatusCompleted, got.Status)
		assert.Empty(t, got.Error)
		assert.EqualValues(t, 42, got.ProcessingTimeMs)
	})
}

func TestLedger_StoredResultIsDetached(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		ctx := context.Background()
		res := &estimate.ImportResult{
			ImportID: "imp-9",
			Damage:   estimate.DamageSummary{Lines: []estimate.DamageLine{{Description: "Hood", Quantity: 1}}},
			Validation: estimate.ValidationResult{
				Score:    90,
				Warnings: []string{"missing loss date"},
			},
		}
		end := time.Now().UTC()
		record(t, l, domain.ImportRecord{
			ImportID: "imp-9",
			Status:   domain.ImportStatusCompleted,
			EndTime:  &end,
			Result:   res,
		})

		res.Validation.Score = 10
		res.Validation.Warnings[0] = "changed"
		res.Damage.Lines[0].Description = "Fender"

		got, err := l.Get(ctx, "imp-9")
		require.NoError(t, err)
		require.NotNil(t, got.Result)
		assert.Equal(t, 90, got.Result.Validation.Score)
		assert.Equal(t, []string{"missing loss date"}, got.Result.Validation.Warnings)
		assert.Equal(t, "Hood", got.Result.Damage.Lines[0].Description)

		got.Result.Damage.Lines[0].Description = "Bumper"
		again, err := l.Get(ctx, "imp-9")
		require.NoError(t, err)
		assert.Equal(t, "Hood", again.Result.Damage.Lines[0].Description)
	})
}

func TestLedger_ListNewestFirstWithPaging(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		base := time.Now().Add(-time.Hour).UTC()
		for i, id := range []string{"a", "b", "c", "d", "e"} {
			record(t, l, domain.ImportRecord{ImportID: id, StartTime: base.Add(time.Duration(i) * time.Minute)})
		}

		page, err := l.List(context.Background(), domain.ImportFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Records, 2)
		assert.Equal(t, "e", page.Records[0].ImportID)
		assert.Equal(t, "d", page.Records[1].ImportID)

		page, err = l.List(context.Background(), domain.ImportFilter{Page: 3, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		assert.Equal(t, "a", page.Records[0].ImportID)

		page, err = l.List(context.Background(), domain.ImportFilter{Page: 9, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, page.Records)
	})
}

func TestLedger_ListDefaultsAndFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		record(t, l, domain.ImportRecord{ImportID: "1", UserID: "u1", Status: domain.ImportStatusCompleted})
		record(t, l, domain.ImportRecord{ImportID: "2", UserID: "u2", Status: domain.ImportStatusFailed})
		record(t, l, domain.ImportRecord{ImportID: "3", UserID: "u1", Status: domain.ImportStatusFailed})

		page, err := l.List(context.Background(), domain.ImportFilter{PageSize: 1000})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, ledger.MaxPageSize, page.PageSize)

		page, err = l.List(context.Background(), domain.ImportFilter{})
		require.NoError(t, err)
		assert.Equal(t, ledger.DefaultPageSize, page.PageSize)
		assert.Equal(t, 3, page.Total)

		page, err = l.List(context.Background(), domain.ImportFilter{Status: domain.ImportStatusFailed, UserID: "u1"})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "3", page.Records[0].ImportID)
	})
}

func TestLedger_PurgeOlderThan(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		now := time.Now().UTC()
		record(t, l, domain.ImportRecord{ImportID: "old", StartTime: now.Add(-40 * 24 * time.Hour)})
		record(t, l, domain.ImportRecord{ImportID: "older", StartTime: now.Add(-90 * 24 * time.Hour)})
		record(t, l, domain.ImportRecord{ImportID: "fresh", StartTime: now.Add(-time.Hour)})

		removed, err := l.PurgeOlderThan(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		_, err = l.Get(context.Background(), "old")
		assert.ErrorIs(t, err, domain.ErrImportNotFound)
		_, err = l.Get(context.Background(), "fresh")
		assert.NoError(t, err)

		removed, err = l.PurgeOlderThan(context.Background(), 30)
		require.NoError(t, err)
		assert.Zero(t, removed)

		_, err = l.PurgeOlderThan(context.Background(), -1)
		assert.Error(t, err)
	})
}

func TestLedger_Statistics(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		now := time.Now().UTC()
		record(t, l, domain.ImportRecord{ImportID: "1", FileType: domain.FileTypeBMS, UserID: "u1", Status: domain.ImportStatusCompleted, ProcessingTimeMs: 100, StartTime: now.Add(-time.Hour)})
		record(t, l, domain.ImportRecord{ImportID: "2", FileType: domain.FileTypeEMS, UserID: "u1", Status: domain.ImportStatusFailed, ProcessingTimeMs: 300, StartTime: now.Add(-2 * time.Hour)})
		record(t, l, domain.ImportRecord{ImportID: "3", FileType: domain.FileTypeBMS, UserID: "u2", Status: domain.ImportStatusProcessing, StartTime: now.Add(-3 * time.Hour)})
		record(t, l, domain.ImportRecord{ImportID: "4", FileType: domain.FileTypeBMS, Status: domain.ImportStatusCompleted, ProcessingTimeMs: 50, StartTime: now.Add(-10 * 24 * time.Hour)})

		stats, err := l.Statistics(context.Background(), "7d", ledger.GroupByFileType)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalImports)
		assert.Equal(t, 1, stats.SuccessCount)
		assert.Equal(t, 1, stats.FailureCount)
		assert.Equal(t, 1, stats.ProcessingCount)
		assert.Equal(t, 200.0, stats.AvgProcessingTimeMs)
		assert.Equal(t, 2, stats.CountsByFileType[domain.FileTypeBMS])
		assert.Equal(t, 1, stats.CountsByFileType[domain.FileTypeEMS])
		require.Len(t, stats.Groups, 2)
		assert.Equal(t, "bms", stats.Groups[0].Key)
		assert.Equal(t, 2, stats.Groups[0].Count)
		assert.Equal(t, 100.0, stats.Groups[0].AvgProcessingTimeMs)

		stats, err = l.Statistics(context.Background(), "all", ledger.GroupByUser)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalImports)
		require.Len(t, stats.Groups, 3)
		assert.Equal(t, "anonymous", stats.Groups[0].Key)

		_, err = l.Statistics(context.Background(), "fortnight", "")
		assert.Error(t, err)
		_, err = l.Statistics(context.Background(), "7d", "tenant")
		assert.Error(t, err)
	})
}

func TestLedger_ConcurrentRecords(t *testing.T) {
	forEachBackend(t, func(t *testing.T, l port.ImportLedger) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Record(context.Background(), &domain.ImportRecord{FileType: domain.FileTypeEMS})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		page, err := l.List(context.Background(), domain.ImportFilter{PageSize: 100})
		require.NoError(t, err)
		assert.Equal(t, 20, page.Total)
	})
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]time.Duration{
		"":      0,
		"all":   0,
		"day":   24 * time.Hour,
		"24h":   24 * time.Hour,
		"week":  7 * 24 * time.Hour,
		"30d":   30 * 24 * time.Hour,
		"month": 30 * 24 * time.Hour,
		"90m":   90 * time.Minute,
	}
	for in, want := range tests {
		got, err := ledger.ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ledger.ParsePeriod("-5h")
	assert.Error(t, err)
}
