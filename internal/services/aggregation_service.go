package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"streetpulse/internal/dataprocessing"
	"streetpulse/internal/infrastructure"
	"streetpulse/pkg/contracts/domain"
)

// Query names used as metric attributes and cache key prefixes.
const (
	QueryWindows           = "windows"
	QueryMonths            = "months"
	QueryDays              = "days"
	QueryLocations         = "locations"
	QueryLocationMonthTime = "location_month_time"
	QueryLocationDayTime   = "location_day_time"
	QueryLocationNames     = "location_names"
	QueryWeekdays          = "weekdays"
	QueryPeak              = "peak"
	QueryTotals            = "totals"
	QueryCompareMonths     = "compare_months"
)

// WindowSummary describes one loaded year window.
type WindowSummary struct {
	Name  domain.WindowName `json:"name"`
	Start time.Time         `json:"start"`
	End   time.Time         `json:"end"`
	Rows  int               `json:"rows"`
	Empty bool              `json:"empty"`
}

// AggregationOptions configures an AggregationService.
type AggregationOptions struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	CleanupInterval time.Duration
	Metrics         *infrastructure.DatasetMetrics
	Tracer          trace.Tracer
	Logger          *slog.Logger
}

// AggregationService answers aggregate queries over a loaded dataset.
type AggregationService struct {
	dataset *dataprocessing.Dataset
	cache   *cache.Cache
	metrics *infrastructure.DatasetMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewAggregationService creates a service over ds. A nil dataset is allowed;
// every query then fails with ErrDatasetNotLoaded.
func NewAggregationService(ds *dataprocessing.Dataset, opts AggregationOptions) *AggregationService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer("services")
	}

	s := &AggregationService{
		dataset: ds,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
		logger:  opts.Logger.With(slog.String("component", "aggregation_service")),
	}
	if opts.CacheEnabled {
		s.cache = cache.New(opts.CacheTTL, opts.CleanupInterval)
	}

	s.logger.Info("AggregationService initialized",
		slog.Bool("dataset_loaded", ds != nil),
		slog.Bool("cache_enabled", opts.CacheEnabled),
		slog.Duration("cache_ttl", opts.CacheTTL))
	return s
}

// Dataset returns the underlying dataset, or nil.
func (s *AggregationService) Dataset() *dataprocessing.Dataset {
	return s.dataset
}

// run resolves a cached result or computes and stores it, recording metrics
// and a span for the query.
func run[T any](ctx context.Context, s *AggregationService, query string, args []string, compute func() (T, error)) (T, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "aggregation."+query,
		trace.WithAttributes(attribute.StringSlice("args", args)))
	defer span.End()

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.dataset == nil {
		return zero, ErrDatasetNotLoaded
	}

	key := query + "|" + strings.Join(args, "|")
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.RecordQuery(ctx, query, time.Since(start), true)
			return v.(T), nil
		}
	}

	result, err := compute()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return zero, err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, result)
	}
	s.metrics.RecordQuery(ctx, query, time.Since(start), false)

	s.logger.DebugContext(ctx, "aggregation computed",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (s *AggregationService) window(name domain.WindowName) (*dataprocessing.Window, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
	return s.dataset.Window(name), nil
}

// Windows lists both windows with their bounds and row counts.
func (s *AggregationService) Windows(ctx context.Context) ([]WindowSummary, error) {
	return run(ctx, s, QueryWindows, nil, func() ([]WindowSummary, error) {
		out := make([]WindowSummary, 0, 2)
		for _, w := range []*dataprocessing.Window{s.dataset.Last, s.dataset.Previous} {
			out = append(out, WindowSummary{
				Name:  w.Name,
				Start: w.Start,
				End:   w.End,
				Rows:  w.Len(),
				Empty: w.Empty(),
			})
		}
		return out, nil
	})
}

// CountByMonth sums pedestrians per fiscal month of a window.
func (s *AggregationService) CountByMonth(ctx context.Context, window domain.WindowName) ([]domain.MonthCount, error) {
	return run(ctx, s, QueryMonths, []string{string(window)}, func() ([]domain.MonthCount, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		return w.CountByMonth(), nil
	})
}

// CountByDay sums pedestrians per calendar date of a window.
func (s *AggregationService) CountByDay(ctx context.Context, window domain.WindowName) ([]domain.DayCount, error) {
	return run(ctx, s, QueryDays, []string{string(window)}, func() ([]domain.DayCount, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		return w.CountByDay(), nil
	})
}

// CountByLocation sums pedestrians per location of a window.
func (s *AggregationService) CountByLocation(ctx context.Context, window domain.WindowName) ([]domain.LocationCount, error) {
	return run(ctx, s, QueryLocations, []string{string(window)}, func() ([]domain.LocationCount, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		return w.CountByLocation(), nil
	})
}

// LocationDateTime groups a window by month, time of day and location. A
// non-empty location keeps only that location's rows, which is an empty
// table when the location has none.
func (s *AggregationService) LocationDateTime(ctx context.Context, window domain.WindowName, location string) ([]domain.LocationMonthTime, error) {
	return run(ctx, s, QueryLocationMonthTime, []string{string(window), location}, func() ([]domain.LocationMonthTime, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		rows := w.LocationDateTime()
		if location == "" {
			return rows, nil
		}
		return dataprocessing.FilterLocation(rows, location), nil
	})
}

// LocationDayTime groups a window by weekday, time of day and location.
func (s *AggregationService) LocationDayTime(ctx context.Context, window domain.WindowName) ([]domain.LocationDayTime, error) {
	return run(ctx, s, QueryLocationDayTime, []string{string(window)}, func() ([]domain.LocationDayTime, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		return w.LocationDayTime(), nil
	})
}

// WeekdayDistribution summarises the daily totals of a window per weekday.
func (s *AggregationService) WeekdayDistribution(ctx context.Context, window domain.WindowName) ([]domain.WeekdayStats, error) {
	return run(ctx, s, QueryWeekdays, []string{string(window)}, func() ([]domain.WeekdayStats, error) {
		w, err := s.window(window)
		if err != nil {
			return nil, err
		}
		return dataprocessing.WeekdayDistribution(w.CountByDay()), nil
	})
}

// PeakPeriod finds the busiest (month, time of day) of a location.
func (s *AggregationService) PeakPeriod(ctx context.Context, window domain.WindowName, location string, measure domain.Measure) (domain.PeakPeriod, error) {
	if measure == "" {
		measure = domain.MeasureAll
	}
	return run(ctx, s, QueryPeak, []string{string(window), location, string(measure)}, func() (domain.PeakPeriod, error) {
		if !measure.Valid() {
			return domain.PeakPeriod{}, fmt.Errorf("%w: %q", ErrUnknownMeasure, measure)
		}
		w, err := s.window(window)
		if err != nil {
			return domain.PeakPeriod{}, err
		}
		peak, ok := dataprocessing.PeakPeriod(w.LocationDateTime(), location, measure)
		if !ok {
			return domain.PeakPeriod{}, fmt.Errorf("%w: %q", ErrUnknownLocation, location)
		}
		return peak, nil
	})
}

// YearTotals reports the pedestrian total of both windows.
func (s *AggregationService) YearTotals(ctx context.Context) ([]domain.WindowTotal, error) {
	return run(ctx, s, QueryTotals, nil, func() ([]domain.WindowTotal, error) {
		return s.dataset.YearTotals(), nil
	})
}

// CompareMonths joins the monthly totals of the previous and last windows.
func (s *AggregationService) CompareMonths(ctx context.Context) ([]domain.MonthComparison, error) {
	return run(ctx, s, QueryCompareMonths, nil, func() ([]domain.MonthComparison, error) {
		return dataprocessing.CompareMonths(
			s.dataset.CountByMonthPreviousYear(),
			s.dataset.CountByMonthLastYear(),
		), nil
	})
}

// Locations lists the locations present in a window.
func (s *AggregationService) Locations(ctx context.Context, window domain.WindowName) ([]string, error) {
	rows, err := s.LocationDateTime(ctx, window, "")
	if err != nil {
		return nil, err
	}
	return dataprocessing.Locations(rows), nil
}
