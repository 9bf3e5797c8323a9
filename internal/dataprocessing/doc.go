// Package dataprocessing loads hourly pedestrian counts and aggregates them for
// the dashboard.
//
// # Architecture
//
// The package is organized into three parts:
//
//  1. Parser: reads delimited text or XLSX sources into raw records
//  2. Loader: derives calendar fields, drops the excluded section and splits the
//     records into the previous and last fiscal year windows
//  3. Aggregations: pure group-by queries over a window
//
// # Usage
//
// Loading a dataset:
//
//	ds, err := dataprocessing.Load(ctx, "data/hystreet.csv", dataprocessing.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Querying a window:
//
//	months := ds.Last.CountByMonth()
//	previous := ds.Window(domain.WindowPrevious).CountByLocation()
//
// # Data Flow
//
//	CSV/XLSX → Parser → RawRecords → Loader → Windows → Aggregations → tables
//
// # Error Handling
//
// Loading is all-or-nothing. A missing column or a bad count yields a
// *MalformedInputError, a bad timestamp an *UnparsableTimestampError; both
// carry the offending row. Aggregations never fail: an empty window produces
// empty tables.
//
// # Concurrency
//
// A Dataset is immutable once Load returns, so every query may run
// concurrently without locking.
package dataprocessing
