package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/export"
	"collisionos/internal/ledger"
)

func sampleRecords() []domain.ImportRecord {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	return []domain.ImportRecord{
		{
			ImportID:         "imp-1",
			FileName:         "camry.ems",
			FileType:         domain.FileTypeEMS,
			Status:           domain.ImportStatusCompleted,
			StartTime:        start,
			EndTime:          &end,
			ProcessingTimeMs: 1500,
			UserID:           "u-1",
			Result: &estimate.ImportResult{
				Customer:   estimate.NormalizedCustomer{FullName: "Jane Doe"},
				Vehicle:    estimate.NormalizedVehicle{Year: 2020, Make: "Toyota", Model: "Camry", VIN: "4T1B11HK5LU000001"},
				Document:   estimate.DocumentInfo{EstimateNumber: "E-1001", ClaimNumber: "C-42"},
				Damage:     estimate.DamageSummary{Totals: estimate.FinancialSummary{GrandTotal: 270}},
				Validation: estimate.ValidationResult{IsValid: true, Score: 100},
			},
		},
		{
			ImportID:  "imp-2",
			FileName:  "broken.xml",
			FileType:  domain.FileTypeBMS,
			Status:    domain.ImportStatusFailed,
			StartTime: start,
			Error:     "malformed bms document: not well-formed XML",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleRecords()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(raw[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Len(t, header, 20)
	assert.Equal(t, "Import ID", header[0])
	assert.Equal(t, "Grand Total", header[14])
	assert.Equal(t, "Error", header[19])

	ok := rows[1]
	assert.Equal(t, "imp-1", ok[0])
	assert.Equal(t, "completed", ok[3])
	assert.Equal(t, "2025-03-01T09:00:00Z", ok[6])
	assert.Equal(t, "Jane Doe", ok[9])
	assert.Equal(t, "2020 Toyota Camry", ok[10])
	assert.Equal(t, "270.00", ok[14])
	assert.Equal(t, "100", ok[15])
	assert.Equal(t, "Yes", ok[16])
	assert.Equal(t, "No", ok[17])

	failed := rows[2]
	assert.Equal(t, "failed", failed[3])
	assert.Empty(t, failed[7])
	assert.Empty(t, failed[9])
	assert.Contains(t, failed[19], "malformed")
}

func TestWriteXLSX(t *testing.T) {
	data, err := export.WriteXLSX(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Imports"}, f.GetSheetList())

	rows, err := f.GetRows("Imports")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Import ID", rows[0][0])
	assert.Equal(t, "imp-1", rows[1][0])
	assert.Equal(t, "270", rows[1][14])
	assert.Equal(t, "imp-2", rows[2][0])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Eastside Collision", "Eastside_Collision"},
		{"  a//b  ", "a_b"},
		{"ok-name_1", "ok-name_1"},
		{"***", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, export.SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Eastside_Collision_2025-03-01.csv", export.BuildFilename("Eastside Collision", "csv", now))
	assert.Equal(t, "imports_2025-03-01.xlsx", export.BuildFilename("", "xlsx", now))
}

func TestCollect_WalksAllPages(t *testing.T) {
	l := ledger.NewMemoryLedger()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 230; i++ {
		_, err := l.Record(ctx, &domain.ImportRecord{
			FileName:  "f.ems",
			FileType:  domain.FileTypeEMS,
			Status:    domain.ImportStatusCompleted,
			StartTime: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	recs, err := export.Collect(ctx, l, domain.ImportFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 230)
	assert.True(t, recs[0].StartTime.After(recs[229].StartTime))
}

func TestCollect_Empty(t *testing.T) {
	recs, err := export.Collect(context.Background(), ledger.NewMemoryLedger(), domain.ImportFilter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
