// Package services implements the query layer between the HTTP handlers and
// the loaded dataset.
//
// # Available Services
//
//   - AggregationService: cached, instrumented aggregate queries per window
//   - HealthService: health, readiness, liveness and version reporting
//
// # Error Handling
//
// Services return the sentinel errors of errors.go, wrapped with context.
// Handlers map them to problem details:
//
//   - ErrUnknownWindow, ErrUnknownMeasure: 400
//   - ErrUnknownLocation: 404 (PeakPeriod only)
//   - ErrDatasetNotLoaded: 503
//
// # Caching
//
// Aggregation results are cached per (query, window, arguments) with
// github.com/patrickmn/go-cache. The dataset is immutable once loaded, so
// entries never need invalidation; the TTL only bounds memory. Cached slices
// are shared between callers and must be treated as read-only.
package services
