package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"collisionos/internal/domain"
)

const sheetName = "Imports"

// numeric columns are written as numbers so spreadsheets can sum them.
const (
	colProcessingMs = 8
	colGrandTotal   = 14
	colScore        = 15
)

// WriteXLSX renders ledger records into a single-sheet workbook.
func WriteXLSX(recs []domain.ImportRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than leave an empty one behind.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("export.WriteXLSX: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for r := range recs {
		rowNum := r + 2
		row := recordToRow(&recs[r])
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			_ = f.SetCellValue(sheetName, cell, cellValue(&recs[r], c, v))
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38) // import id
	_ = f.SetColWidth(sheetName, "B", "B", 28) // file name
	_ = f.SetColWidth(sheetName, "G", "H", 22) // timestamps
	_ = f.SetColWidth(sheetName, "J", "L", 24) // customer, vehicle, vin
	_ = f.SetColWidth(sheetName, "T", "T", 48) // error

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export.WriteXLSX: xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(rec *domain.ImportRecord, col int, text string) any {
	switch col {
	case colProcessingMs:
		return rec.ProcessingTimeMs
	case colGrandTotal:
		if rec.Result != nil {
			return rec.Result.Damage.Totals.GrandTotal
		}
	case colScore:
		if rec.Result != nil {
			return rec.Result.Validation.Score
		}
	}
	return text
}
