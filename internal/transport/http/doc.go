// Package http implements the JSON API of the dashboard. Handlers stay thin:
// they validate path and query parameters, call a service and render the
// result with go-chi/render. Service errors become RFC 7807 problem details
// through errors.ErrorHandler.
//
// # Routes
//
// Everything is mounted under /api:
//
//	GET /health, /health/ready, /health/live, /version
//	GET /windows
//	GET /windows/{window}/months
//	GET /windows/{window}/days
//	GET /windows/{window}/locations
//	GET /windows/{window}/location-month-time?location=
//	GET /windows/{window}/location-day-time
//	GET /windows/{window}/weekdays
//	GET /windows/{window}/peak?location=&measure=
//	GET /totals
//	GET /compare/months
//
// {window} is "last" or "previous"; anything else answers 400.
package http
