// Package app wires the streetpulse dashboard together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from .env, an optional YAML file and STREETPULSE_* variables
//  2. Initialize logging and OpenTelemetry
//  3. Load the pedestrian count dataset once; a load failure is fatal
//  4. Build the aggregation and health services over the dataset
//  5. Set up the chi router, middleware chain and /metrics endpoint
//  6. Configure and start the HTTP server
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, drains in-flight requests within
// ShutdownTimeout and flushes the telemetry providers.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, leaving that decision to main.
package app
