package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"collisionos/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row shared by the CSV and XLSX exports.
var columns = []string{
	"Import ID",
	"File Name",
	"File Type",
	"Status",
	"User",
	"Tenant",
	"Started At",
	"Finished At",
	"Processing Ms",
	"Customer",
	"Vehicle",
	"VIN",
	"Estimate Number",
	"Claim Number",
	"Grand Total",
	"Score",
	"Valid",
	"Auto Created",
	"Manual Intervention",
	"Error",
}

// Writer wraps csv.Writer for exporting ledger records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of ledger records to CSV rows and writes them.
func (w *Writer) WriteRecords(recs []domain.ImportRecord) error {
	for i := range recs {
		if err := w.csv.Write(recordToRow(&recs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes BOM, header and rows, then flushes.
func WriteCSV(out io.Writer, recs []domain.ImportRecord) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	if err := w.WriteRecords(recs); err != nil {
		return fmt.Errorf("export.WriteCSV: %w", err)
	}
	w.Flush()
	return w.Error()
}

// recordToRow converts a single record to a row. Result columns stay empty
// for imports that never produced a result.
func recordToRow(rec *domain.ImportRecord) []string {
	row := make([]string, len(columns))

	row[0] = rec.ImportID
	row[1] = rec.FileName
	row[2] = string(rec.FileType)
	row[3] = string(rec.Status)
	row[4] = rec.UserID
	row[5] = rec.TenantID
	row[6] = formatTime(&rec.StartTime)
	row[7] = formatTime(rec.EndTime)
	row[8] = strconv.FormatInt(rec.ProcessingTimeMs, 10)
	row[19] = rec.Error

	res := rec.Result
	if res == nil {
		return row
	}

	row[9] = res.Customer.FullName
	row[10] = strings.TrimSpace(fmt.Sprintf("%s %s %s", yearString(res.Vehicle.Year), res.Vehicle.Make, res.Vehicle.Model))
	row[11] = res.Vehicle.VIN
	row[12] = res.Document.EstimateNumber
	row[13] = res.Document.ClaimNumber
	row[14] = formatMoney(res.Damage.Totals.GrandTotal)
	row[15] = strconv.Itoa(res.Validation.Score)
	row[16] = formatBool(res.Validation.IsValid)
	row[17] = formatBool(res.AutoCreationSuccess)
	row[18] = formatBool(res.RequiresManualIntervention)

	return row
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_prefix}_{YYYY-MM-DD}.{ext}.
func BuildFilename(prefix, ext string, now time.Time) string {
	sanitized := SanitizeFilename(prefix)
	if sanitized == "" {
		sanitized = "imports"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), ext)
}
