// Package export serializes a day's transactions into a spreadsheet file.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"caja/internal/core"
)

const sheetName = "Reporte Diario"

// Exporter writes daily report spreadsheets under a fixed directory.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Filename returns the deterministic file name for a date's report.
func Filename(date core.Date) string {
	return fmt.Sprintf("reporte_%s.xlsx", date.String())
}

// WriteDay writes the report file for one day and returns its path.
// Rows keep the report order (newest id first) under a fixed header row.
// Exporting the same day again overwrites the previous file.
func (e *Exporter) WriteDay(ctx context.Context, date core.Date, txs []core.Transaction) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("name sheet: %w", err)
	}

	header := []any{"ID", "Tipo", "Monto", "Descripción", "Fecha"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row coordinates: %w", err)
		}
		row := []any{tx.ID, string(tx.Kind), tx.Amount.Float(), tx.Description, tx.Date.String()}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	path := filepath.Join(e.dir, Filename(date))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save spreadsheet: %w", err)
	}

	slog.InfoContext(ctx, "Day report exported", "path", path, "rows", len(txs))
	return path, nil
}
