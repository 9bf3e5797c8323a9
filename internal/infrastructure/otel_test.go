package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"streetpulse/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	p, err := InitializeOTel(config.TelemetryConfig{ServiceName: "test", TraceExporter: "none"}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, p.TracerProvider)
	assert.Nil(t, p.MeterProvider)
	assert.Nil(t, p.PrometheusHTTP)
	assert.NotNil(t, p.Tracer)
	assert.NotNil(t, p.Meter)

	_, err = NewDatasetMetrics(p.Meter)
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{ServiceName: "test", TracingEnabled: true, TraceExporter: "zipkin"}, discardLogger())
	assert.Error(t, err)
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.TracingEnabled = true
	cfg.TraceExporter = "stdout"
	cfg.MetricsEnabled = false

	p, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, p.TracerProvider)
	assert.Nil(t, p.MeterProvider)

	_, span := p.Tracer.Start(context.Background(), "test")
	assert.True(t, span.IsRecording())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInitializeOTel_PrometheusEndpoint(t *testing.T) {
	cfg := config.TelemetryConfig{ServiceName: "test", TraceExporter: "none", MetricsEnabled: true}

	// Two providers must not collide on registration.
	for i := 0; i < 2; i++ {
		p, err := InitializeOTel(cfg, discardLogger())
		require.NoError(t, err)
		require.NotNil(t, p.PrometheusHTTP)

		m, err := NewDatasetMetrics(p.Meter)
		require.NoError(t, err)
		m.RecordQuery(context.Background(), "months", time.Millisecond, false)

		rec := httptest.NewRecorder()
		p.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "aggregation_queries_total")

		require.NoError(t, p.Shutdown(context.Background()))
	}
}

func TestDatasetMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewDatasetMetrics(mp.Meter("test"))
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeMetrics(mp.Meter("test")))

	ctx := context.Background()
	m.RecordLoad(ctx, time.Second, 6, 1)
	m.RecordQuery(ctx, "months", time.Millisecond, false)
	m.RecordQuery(ctx, "months", time.Millisecond, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
			if s, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(6), sums["dataset_rows_loaded_total"])
	assert.Equal(t, int64(1), sums["dataset_rows_excluded_total"])
	assert.Equal(t, int64(2), sums["aggregation_queries_total"])
	assert.Equal(t, int64(1), sums["aggregation_cache_hits_total"])
	assert.Equal(t, int64(1), sums["aggregation_cache_misses_total"])
	assert.True(t, names["runtime_goroutines"])
}

func TestDatasetMetrics_NilSafe(t *testing.T) {
	var m *DatasetMetrics
	assert.NotPanics(t, func() {
		m.RecordLoad(context.Background(), time.Second, 1, 0)
		m.RecordQuery(context.Background(), "days", time.Second, true)
	})
}
