// Package ledger records every ingestion attempt. Three backends share the
// same semantics: an in-memory map, Redis, and a bbolt file.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"collisionos/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Group-by keys accepted by Statistics.
const (
	GroupByFileType = "file_type"
	GroupByStatus   = "status"
	GroupByUser     = "user"
	GroupByDay      = "day"
)

// prepare fills in a generated id and start time, and checks the status
// transition against the stored record (nil when new). A terminal record
// accepts no further writes.
func prepare(rec *domain.ImportRecord, existing *domain.ImportRecord, now time.Time) error {
	if rec.ImportID == "" {
		rec.ImportID = uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = domain.ImportStatusProcessing
	}
	if existing != nil {
		if existing.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", domain.ErrImportFinalized, rec.ImportID, existing.Status)
		}
		if rec.StartTime.IsZero() {
			rec.StartTime = existing.StartTime
		}
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = now
	}
	return nil
}

// normalizeFilter applies paging defaults.
func normalizeFilter(f domain.ImportFilter) domain.ImportFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

func matches(rec *domain.ImportRecord, f domain.ImportFilter) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	return true
}

// sortNewestFirst orders by start time descending, then id for stability.
func sortNewestFirst(recs []domain.ImportRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].StartTime.Equal(recs[j].StartTime) {
			return recs[i].StartTime.After(recs[j].StartTime)
		}
		return recs[i].ImportID > recs[j].ImportID
	})
}

// paginate filters, sorts and slices records into a page.
func paginate(all []domain.ImportRecord, f domain.ImportFilter) *domain.ImportPage {
	f = normalizeFilter(f)

	filtered := make([]domain.ImportRecord, 0, len(all))
	for i := range all {
		if matches(&all[i], f) {
			filtered = append(filtered, all[i])
		}
	}
	sortNewestFirst(filtered)

	total := len(filtered)
	start := (f.Page - 1) * f.PageSize
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}

	return &domain.ImportPage{
		Records:    filtered[start:end],
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: (total + f.PageSize - 1) / f.PageSize,
	}
}

// ParsePeriod converts a statistics window to a duration. Zero means all
// time.
func ParsePeriod(period string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", "all":
		return 0, nil
	case "24h", "day", "1d":
		return 24 * time.Hour, nil
	case "7d", "week":
		return 7 * 24 * time.Hour, nil
	case "30d", "month":
		return 30 * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(period)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid statistics period %q", period)
	}
	return d, nil
}

func validGroupBy(groupBy string) error {
	switch groupBy {
	case "", GroupByFileType, GroupByStatus, GroupByUser, GroupByDay:
		return nil
	}
	return fmt.Errorf("invalid statistics group-by %q", groupBy)
}

// cutoff returns the earliest start time included by a period.
func cutoff(period string, now time.Time) (time.Time, error) {
	d, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	if d == 0 {
		return time.Time{}, nil
	}
	return now.Add(-d), nil
}

// buildStats aggregates records that started at or after since.
func buildStats(recs []domain.ImportRecord, period, groupBy string, since time.Time) *domain.ImportStats {
	stats := &domain.ImportStats{
		Period:           period,
		GroupBy:          groupBy,
		CountsByFileType: map[domain.FileType]int{},
	}
	if stats.Period == "" {
		stats.Period = "all"
	}

	type acc struct {
		count, success, failure int
		timeSum                 int64
		timed                   int
	}
	groups := map[string]*acc{}
	var timeSum int64
	var timed int

	for i := range recs {
		r := &recs[i]
		if r.StartTime.Before(since) {
			continue
		}
		stats.TotalImports++
		stats.CountsByFileType[r.FileType]++
		switch r.Status {
		case domain.ImportStatusCompleted:
			stats.SuccessCount++
		case domain.ImportStatusFailed:
			stats.FailureCount++
		default:
			stats.ProcessingCount++
		}
		if r.Status.Terminal() {
			timeSum += r.ProcessingTimeMs
			timed++
		}

		if groupBy == "" {
			continue
		}
		key := groupKey(r, groupBy)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		switch r.Status {
		case domain.ImportStatusCompleted:
			g.success++
		case domain.ImportStatusFailed:
			g.failure++
		}
		if r.Status.Terminal() {
			g.timeSum += r.ProcessingTimeMs
			g.timed++
		}
	}

	if timed > 0 {
		stats.AvgProcessingTimeMs = float64(timeSum) / float64(timed)
	}
	for key, g := range groups {
		grp := domain.ImportGroup{
			Key:          key,
			Count:        g.count,
			SuccessCount: g.success,
			FailureCount: g.failure,
		}
		if g.timed > 0 {
			grp.AvgProcessingTimeMs = float64(g.timeSum) / float64(g.timed)
		}
		stats.Groups = append(stats.Groups, grp)
	}
	sort.Slice(stats.Groups, func(i, j int) bool { return stats.Groups[i].Key < stats.Groups[j].Key })

	return stats
}

func groupKey(r *domain.ImportRecord, groupBy string) string {
	switch groupBy {
	case GroupByFileType:
		return string(r.FileType)
	case GroupByStatus:
		return string(r.Status)
	case GroupByUser:
		if r.UserID == "" {
			return "anonymous"
		}
		return r.UserID
	case GroupByDay:
		return r.StartTime.UTC().Format("2006-01-02")
	}
	return ""
}

// purgeCutoff is the boundary for PurgeOlderThan: records that started
// before it are removed.
func purgeCutoff(days int, now time.Time) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
