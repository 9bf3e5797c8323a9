package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"streetpulse/pkg/contracts/domain"
)

// DefaultExcludedLocation is the street section whose sensor data is incomplete.
const DefaultExcludedLocation = "Bahnhofstrasse (Nord)"

// DefaultLastYearStart is the calendar year in which the last window begins.
const DefaultLastYearStart = 2022

// Options configures how a dataset is loaded.
type Options struct {
	// ExcludedLocation is dropped before windowing. Empty keeps every location.
	ExcludedLocation string

	// LastYearStart is the year whose October 1st opens the last window.
	LastYearStart int

	// Delimiter for text sources; zero sniffs ',' or ';' from the header.
	Delimiter rune

	// Location interprets timestamps that carry no UTC offset.
	Location *time.Location

	Logger *slog.Logger
}

// DefaultOptions returns the options used by the dashboard.
func DefaultOptions() Options {
	return Options{
		ExcludedLocation: DefaultExcludedLocation,
		LastYearStart:    DefaultLastYearStart,
		Location:         time.UTC,
	}
}

// LoadStats summarises what happened to the source rows.
type LoadStats struct {
	RowsRead       int `json:"rows_read"`
	RowsExcluded   int `json:"rows_excluded"`
	RowsOutside    int `json:"rows_outside_windows"`
	PreviousRows   int `json:"previous_rows"`
	LastRows       int `json:"last_rows"`
	InvariantWarns int `json:"invariant_warnings"`
}

// Dataset holds the two immutable fiscal year windows.
type Dataset struct {
	Previous *Window
	Last     *Window
	Stats    LoadStats
	Source   string
	LoadedAt time.Time
}

// Window returns the window with the given name, or nil.
func (d *Dataset) Window(name domain.WindowName) *Window {
	switch name {
	case domain.WindowLast:
		return d.Last
	case domain.WindowPrevious:
		return d.Previous
	}
	return nil
}

// Load reads path and builds a Dataset. Files ending in .xlsx are read as
// workbooks, everything else as delimited text.
func Load(ctx context.Context, path string, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	var (
		raws []domain.RawRecord
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		raws, err = ReadWorkbook(path, opts.Location)
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open source: %w", err)
		}
		defer f.Close()
		raws, err = ReadCSV(f, opts.Delimiter, opts.Location)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	ds, err := build(ctx, raws, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// LoadReader builds a Dataset from delimited text.
func LoadReader(ctx context.Context, r io.Reader, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()
	raws, err := ReadCSV(r, opts.Delimiter, opts.Location)
	if err != nil {
		return nil, err
	}
	return build(ctx, raws, opts)
}

// LoadRecords builds a Dataset from already parsed raw records.
func LoadRecords(ctx context.Context, raws []domain.RawRecord, opts Options) (*Dataset, error) {
	return build(ctx, raws, opts.withDefaults())
}

func (o Options) withDefaults() Options {
	if o.LastYearStart == 0 {
		o.LastYearStart = DefaultLastYearStart
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func build(ctx context.Context, raws []domain.RawRecord, opts Options) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prevWin, lastWin := WindowsFor(opts.LastYearStart)
	stats := LoadStats{RowsRead: len(raws)}
	var previous, last []domain.DerivedRecord

	for i, raw := range raws {
		rec, err := domain.Derive(raw)
		if err != nil {
			return nil, &UnparsableTimestampError{Row: i + 1, Value: raw.Timestamp.String()}
		}
		if opts.ExcludedLocation != "" && rec.LocationName == opts.ExcludedLocation {
			stats.RowsExcluded++
			continue
		}
		switch {
		case prevWin.Contains(rec.Timestamp):
			previous = append(previous, rec)
		case lastWin.Contains(rec.Timestamp):
			last = append(last, rec)
		default:
			stats.RowsOutside++
		}
	}

	ds := &Dataset{
		Previous: newWindow(prevWin, previous),
		Last:     newWindow(lastWin, last),
		LoadedAt: time.Now(),
	}
	stats.PreviousRows = ds.Previous.Len()
	stats.LastRows = ds.Last.Len()

	logger := opts.Logger.With(slog.String("component", "loader"))
	for _, w := range []*Window{ds.Previous, ds.Last} {
		if w.Empty() {
			logger.WarnContext(ctx, "year window is empty",
				slog.String("window", string(w.Name)),
				slog.Time("start", w.Start),
				slog.Time("end", w.End))
		}
		for _, v := range monthYearViolations(w.records) {
			stats.InvariantWarns++
			logger.WarnContext(ctx, "month spans several month_year labels",
				slog.String("window", string(w.Name)),
				slog.String("month", v.month.String()),
				slog.Any("labels", v.labels))
		}
	}
	ds.Stats = stats

	logger.InfoContext(ctx, "dataset loaded",
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows_excluded", stats.RowsExcluded),
		slog.Int("rows_outside_windows", stats.RowsOutside),
		slog.Int("previous_rows", stats.PreviousRows),
		slog.Int("last_rows", stats.LastRows))

	return ds, nil
}

type projectionViolation struct {
	month  domain.FiscalMonth
	labels []string
}

// monthYearViolations finds months whose rows carry more than one month_year
// label, which makes the pass-through projection ambiguous.
func monthYearViolations(records []domain.DerivedRecord) []projectionViolation {
	labels := make(map[domain.FiscalMonth][]string)
	for _, r := range records {
		seen := labels[r.Month]
		dup := false
		for _, l := range seen {
			if l == r.MonthYear {
				dup = true
				break
			}
		}
		if !dup {
			labels[r.Month] = append(seen, r.MonthYear)
		}
	}
	var out []projectionViolation
	for _, m := range domain.FiscalMonths {
		if len(labels[m]) > 1 {
			out = append(out, projectionViolation{month: m, labels: labels[m]})
		}
	}
	return out
}
