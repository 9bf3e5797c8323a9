// Package files locates the pedestrian count source on disk.
//
// The configured source may be a single file or a directory of periodic
// exports; for a directory the newest .csv, .txt or .xlsx file is used:
//
//	src, err := files.NewDiscovery("").Resolve("data/exports")
//	if err != nil {
//	    return err
//	}
//	ds, err := dataprocessing.Load(ctx, src.Path, opts)
package files
