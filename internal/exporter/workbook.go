package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on worksheet names.
const maxSheetName = 31

// WorkbookWriter collects tables as worksheets of one XLSX file
type WorkbookWriter struct {
	mu     sync.Mutex
	file   *excelize.File
	path   string
	header int
	logger *slog.Logger
}

// NewWorkbookWriter creates an empty workbook saved to path on Close.
func NewWorkbookWriter(path string, logger *slog.Logger) (*WorkbookWriter, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &WorkbookWriter{file: f, path: path, header: header, logger: logger}, nil
}

// WriteTable adds t as a worksheet named after the table. Numeric cells are
// stored as numbers.
func (w *WorkbookWriter) WriteTable(t Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := t.Name
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
	}

	if err := w.writeRow(sheet, 1, t.Headers); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(max(len(t.Headers), 1), 1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(sheet, "A1", end, w.header); err != nil {
		return fmt.Errorf("failed to style header of %q: %w", sheet, err)
	}

	for i, row := range t.Rows {
		if err := w.writeRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeRow(sheet string, row int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = cellValue(c)
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func cellValue(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Close drops the default sheet, saves the workbook and releases it.
func (w *WorkbookWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.file.Close()

	if len(w.file.GetSheetList()) > 1 {
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("Workbook saved",
		slog.String("path", w.path),
		slog.Int("sheets", len(w.file.GetSheetList())))
	return nil
}
