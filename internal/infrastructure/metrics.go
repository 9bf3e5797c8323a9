package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DatasetMetrics holds the application metrics.
type DatasetMetrics struct {
	// Loader
	LoadDuration metric.Float64Histogram
	RowsLoaded   metric.Int64Counter
	RowsExcluded metric.Int64Counter

	// Aggregation queries
	QueriesTotal  metric.Int64Counter
	QueryDuration metric.Float64Histogram
	CacheHits     metric.Int64Counter
	CacheMisses   metric.Int64Counter

	// HTTP
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewDatasetMetrics creates the instruments on meter.
func NewDatasetMetrics(meter metric.Meter) (*DatasetMetrics, error) {
	var (
		m   DatasetMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RowsLoaded, "dataset_rows_loaded_total", "Rows placed in a year window"},
		{&m.RowsExcluded, "dataset_rows_excluded_total", "Rows dropped by the excluded location rule"},
		{&m.QueriesTotal, "aggregation_queries_total", "Aggregation queries served"},
		{&m.CacheHits, "aggregation_cache_hits_total", "Aggregation results served from cache"},
		{&m.CacheMisses, "aggregation_cache_misses_total", "Aggregation results computed"},
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.LoadDuration, "dataset_load_duration_seconds", "Time to read and window the source"},
		{&m.QueryDuration, "aggregation_query_duration_seconds", "Aggregation query duration"},
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, err
		}
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordLoad records one dataset load.
func (m *DatasetMetrics) RecordLoad(ctx context.Context, duration time.Duration, loaded, excluded int) {
	if m == nil {
		return
	}
	m.LoadDuration.Record(ctx, duration.Seconds())
	m.RowsLoaded.Add(ctx, int64(loaded))
	m.RowsExcluded.Add(ctx, int64(excluded))
}

// RecordQuery records one aggregation query and whether it hit the cache.
func (m *DatasetMetrics) RecordQuery(ctx context.Context, query string, duration time.Duration, cached bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.QueriesTotal.Add(ctx, 1, attrs)
	m.QueryDuration.Record(ctx, duration.Seconds(), attrs)
	if cached {
		m.CacheHits.Add(ctx, 1, attrs)
	} else {
		m.CacheMisses.Add(ctx, 1, attrs)
	}
}

// RecordRequest records one finished HTTP request against its route pattern.
func (m *DatasetMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RegisterRuntimeMetrics observes goroutine count and heap usage.
func RegisterRuntimeMetrics(meter metric.Meter) error {
	goroutines, err := meter.Int64ObservableGauge("runtime_goroutines",
		metric.WithDescription("Number of goroutines"))
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heap, int64(ms.HeapAlloc))
		return nil
	}, goroutines, heap)
	return err
}
