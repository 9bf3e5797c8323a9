// Package middleware holds the HTTP middleware chain of the dashboard API.
//
// Recommended order:
//
//	RequestID -> chi RealIP -> OTelMiddleware -> StructuredLogger ->
//	ErrorHandler.Recover -> SecurityHeaders -> CORS -> RateLimiter -> Timeout
package middleware
