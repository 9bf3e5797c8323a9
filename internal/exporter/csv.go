package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter writes tables as CSV files under one directory
type CSVWriter struct {
	dir       string
	delimiter rune
	logger    *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir. A zero delimiter means ','.
func NewCSVWriter(dir string, delimiter rune, logger *slog.Logger) *CSVWriter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVWriter{dir: dir, delimiter: delimiter, logger: logger}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes one file. Content goes to a temporary sibling first and
// is renamed into place, so readers never see a half written table.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (err error) {
	fullPath := w.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if options.BOMPrefix {
		if _, err := tmp.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(tmp)
	cw.Comma = w.delimiter
	if len(options.Headers) > 0 {
		if err := cw.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	if err := cw.WriteAll(options.Records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", fullPath, err)
	}

	w.logger.Debug("CSV file written",
		slog.String("path", fullPath),
		slog.Int("records", len(options.Records)))
	return nil
}

// WriteTable writes t to <dir>/<name>.csv. Safe for concurrent use with
// distinct table names.
func (w *CSVWriter) WriteTable(t Table) error {
	return w.WriteCSV(t.Name+".csv", WriteOptions{
		Headers:   t.Headers,
		Records:   t.Rows,
		BOMPrefix: true,
	})
}

// Close is a no-op; every table is flushed as it is written.
func (w *CSVWriter) Close() error {
	return nil
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}
