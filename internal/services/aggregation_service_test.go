package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"streetpulse/internal/dataprocessing"
	"streetpulse/internal/infrastructure"
	"streetpulse/internal/shared/testutil"
	"streetpulse/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, cacheEnabled bool) *AggregationService {
	t.Helper()
	return NewAggregationService(testutil.SampleDataset(t), AggregationOptions{
		CacheEnabled:    cacheEnabled,
		CacheTTL:        time.Minute,
		CleanupInterval: time.Minute,
		Logger:          quietLogger(),
	})
}

func TestAggregationService_Windows(t *testing.T) {
	svc := newTestService(t, true)

	windows, err := svc.Windows(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, domain.WindowLast, windows[0].Name)
	assert.Equal(t, 4, windows[0].Rows)
	assert.Equal(t, domain.WindowPrevious, windows[1].Name)
	assert.Equal(t, 2, windows[1].Rows)
	assert.False(t, windows[1].Empty)
}

func TestAggregationService_Queries(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	months, err := svc.CountByMonth(ctx, domain.WindowLast)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, domain.October, months[0].Month)
	assert.Equal(t, int64(150), months[0].PedestriansCount)
	assert.Equal(t, domain.March, months[2].Month)

	days, err := svc.CountByDay(ctx, domain.WindowPrevious)
	require.NoError(t, err)
	assert.Len(t, days, 2)

	locations, err := svc.CountByLocation(ctx, domain.WindowLast)
	require.NoError(t, err)
	assert.Equal(t, []domain.LocationCount{
		{LocationName: testutil.LocationMitte, PedestriansCount: 200},
		{LocationName: testutil.LocationSued, PedestriansCount: 35},
	}, locations)

	dayTime, err := svc.LocationDayTime(ctx, domain.WindowLast)
	require.NoError(t, err)
	assert.NotEmpty(t, dayTime)

	weekdays, err := svc.WeekdayDistribution(ctx, domain.WindowLast)
	require.NoError(t, err)
	require.Len(t, weekdays, 2)
	assert.Equal(t, domain.Weekday(time.Monday), weekdays[0].Day)
	assert.Equal(t, 2, weekdays[0].Days)
	assert.InDelta(t, 77.5, weekdays[0].Mean, 1e-9)

	totals, err := svc.YearTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, int64(235), totals[0].PedestriansCount)
	assert.Equal(t, int64(160), totals[1].PedestriansCount)

	compare, err := svc.CompareMonths(ctx)
	require.NoError(t, err)
	require.Len(t, compare, 2)
	assert.Equal(t, domain.October, compare[0].Month)
	assert.Equal(t, int64(50), compare[0].Change)
	assert.InDelta(t, 50.0, compare[0].ChangePercent, 1e-9)

	names, err := svc.Locations(ctx, domain.WindowLast)
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.LocationMitte, testutil.LocationSued}, names)
}

func TestAggregationService_LocationDateTime(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	all, err := svc.LocationDateTime(ctx, domain.WindowLast, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mitte, err := svc.LocationDateTime(ctx, domain.WindowLast, testutil.LocationMitte)
	require.NoError(t, err)
	require.Len(t, mitte, 2)
	for _, r := range mitte {
		assert.Equal(t, testutil.LocationMitte, r.LocationName)
	}

	nord, err := svc.LocationDateTime(ctx, domain.WindowLast, "Bahnhofstrasse (Nord)")
	require.NoError(t, err)
	assert.NotNil(t, nord)
	assert.Empty(t, nord)
}

func TestAggregationService_LocationDateTime_EmptyWindow(t *testing.T) {
	opts := dataprocessing.DefaultOptions()
	opts.Logger = quietLogger()
	ds, err := dataprocessing.LoadRecords(context.Background(), nil, opts)
	require.NoError(t, err)
	svc := NewAggregationService(ds, AggregationOptions{Logger: quietLogger()})

	rows, err := svc.LocationDateTime(context.Background(), domain.WindowPrevious, testutil.LocationMitte)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	names, err := svc.Locations(context.Background(), domain.WindowPrevious)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestAggregationService_PeakPeriod(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	tests := []struct {
		name     string
		location string
		measure  domain.Measure
		month    domain.FiscalMonth
		tod      domain.TimeOfDay
		count    int64
		wantErr  error
	}{
		{"mitte default measure", testutil.LocationMitte, "", domain.October, domain.Morning, 120, nil},
		{"mitte children tie", testutil.LocationMitte, domain.MeasureChildren, domain.October, domain.Morning, 20, nil},
		{"sued all", testutil.LocationSued, domain.MeasureAll, domain.October, domain.Evening, 30, nil},
		{"unknown location", "Nowhere", domain.MeasureAll, 0, 0, 0, ErrUnknownLocation},
		{"unknown measure", testutil.LocationMitte, "seniors", 0, 0, 0, ErrUnknownMeasure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, err := svc.PeakPeriod(ctx, domain.WindowLast, tt.location, tt.measure)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, peak.Month)
			assert.Equal(t, tt.tod, peak.TimeOfDay)
			assert.Equal(t, tt.count, peak.Count)
		})
	}
}

func TestAggregationService_Errors(t *testing.T) {
	svc := newTestService(t, true)

	_, err := svc.CountByMonth(context.Background(), "next")
	assert.ErrorIs(t, err, ErrUnknownWindow)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.CountByDay(ctx, domain.WindowLast)
	assert.ErrorIs(t, err, context.Canceled)

	empty := NewAggregationService(nil, AggregationOptions{Logger: quietLogger()})
	_, err = empty.YearTotals(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	assert.Nil(t, empty.Dataset())
}

func TestAggregationService_CacheMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := infrastructure.NewDatasetMetrics(mp.Meter("test"))
	require.NoError(t, err)

	svc := NewAggregationService(testutil.SampleDataset(t), AggregationOptions{
		CacheEnabled:    true,
		CacheTTL:        time.Minute,
		CleanupInterval: time.Minute,
		Metrics:         metrics,
		Logger:          quietLogger(),
	})

	ctx := context.Background()
	first, err := svc.CountByMonth(ctx, domain.WindowLast)
	require.NoError(t, err)
	second, err := svc.CountByMonth(ctx, domain.WindowLast)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if s, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), sums["aggregation_cache_hits_total"])
	assert.Equal(t, int64(1), sums["aggregation_cache_misses_total"])
	assert.Equal(t, int64(2), sums["aggregation_queries_total"])
}

func TestAggregationService_Concurrent(t *testing.T) {
	svc := newTestService(t, true)
	want, err := svc.LocationDateTime(context.Background(), domain.WindowLast, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.LocationDateTime(context.Background(), domain.WindowLast, "")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
