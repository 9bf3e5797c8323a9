// Package testutil holds helpers shared by the service, transport and app
// tests: a capturing slog handler and a small pedestrian dataset fixture.
package testutil
