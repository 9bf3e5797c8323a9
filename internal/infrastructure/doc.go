// Package infrastructure builds the process-wide plumbing: the slog logger,
// trace-id context helpers and the OpenTelemetry tracer and meter providers.
package infrastructure
