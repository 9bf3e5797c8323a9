package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"streetpulse/internal/dataprocessing"
)

// TableWriter receives rendered tables. Implementations must accept
// concurrent WriteTable calls.
type TableWriter interface {
	WriteTable(Table) error
	Close() error
}

// Options configures an export run.
type Options struct {
	Labels Labels
	// Workers bounds concurrent table builds; zero means one per table.
	Workers int
	Logger  *slog.Logger
}

// Tables builds every aggregate of ds: the per-window tables for both
// windows, then the cross-window totals and month comparison.
func Tables(ds *dataprocessing.Dataset, l Labels) []func() Table {
	var builders []func() Table
	for _, w := range []*dataprocessing.Window{ds.Last, ds.Previous} {
		w := w
		suffix := "_" + string(w.Name)
		builders = append(builders,
			func() Table { return MonthTable("months"+suffix, w.CountByMonth(), l) },
			func() Table { return DayTable("days"+suffix, w.CountByDay(), l) },
			func() Table { return LocationTable("locations"+suffix, w.CountByLocation()) },
			func() Table { return LocationMonthTimeTable("location_month_time"+suffix, w.LocationDateTime(), l) },
			func() Table { return LocationDayTimeTable("location_day_time"+suffix, w.LocationDayTime(), l) },
			func() Table {
				return WeekdayTable("weekdays"+suffix, dataprocessing.WeekdayDistribution(w.CountByDay()), l)
			},
		)
	}
	builders = append(builders,
		func() Table { return TotalsTable("totals", ds.YearTotals()) },
		func() Table {
			return CompareMonthsTable("compare_months", dataprocessing.CompareMonths(
				ds.CountByMonthPreviousYear(), ds.CountByMonthLastYear()), l)
		},
	)
	return builders
}

// Export builds every table of ds concurrently and hands each to out. The
// first failure cancels the remaining work. out is not closed.
func Export(ctx context.Context, ds *dataprocessing.Dataset, out TableWriter, opts Options) (int, error) {
	if opts.Labels.Month == nil || opts.Labels.Weekday == nil {
		opts.Labels = EnglishLabels()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With(slog.String("component", "exporter"))
	start := time.Now()

	builders := Tables(ds, opts.Labels)
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for _, build := range builders {
		build := build
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := build()
			if err := out.WriteTable(t); err != nil {
				return fmt.Errorf("export %s: %w", t.Name, err)
			}
			logger.DebugContext(ctx, "table exported",
				slog.String("table", t.Name),
				slog.Int("rows", len(t.Rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "export complete",
		slog.Int("tables", len(builders)),
		slog.Duration("duration", time.Since(start)))
	return len(builders), nil
}
