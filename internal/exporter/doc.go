// Package exporter renders aggregate tables and writes them out.
//
// Tables are plain header plus string rows. Two writers consume them:
//
// CSVWriter: one UTF-8 CSV file per table (with BOM, for Excel).
//
// WorkbookWriter: one XLSX workbook with a worksheet per table, built with
// excelize. Numeric cells are stored as numbers.
//
// Export builds every table of a dataset concurrently with errgroup:
//
//	w, _ := exporter.NewWorkbookWriter("aggregates.xlsx", logger)
//	n, err := exporter.Export(ctx, ds, w, exporter.Options{Labels: exporter.LocalizedLabels("de_DE")})
//	if err == nil {
//	    err = w.Close()
//	}
package exporter
