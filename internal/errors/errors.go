package errors

import (
	"fmt"
	"net/http"
)

// Code is the machine readable identifier carried by an APIError.
type Code string

const (
	CodeValidation      Code = "VALIDATION_FAILED"
	CodeUnknownWindow   Code = "UNKNOWN_WINDOW"
	CodeUnknownLocation Code = "UNKNOWN_LOCATION"
	CodeDatasetMissing  Code = "DATASET_NOT_LOADED"
	CodeRateLimited     Code = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable     Code = "SERVICE_UNAVAILABLE"
)

// problemTypes maps each code to the problem type URI it is reported as.
// Codes missing here are reported as TypeInternal.
var problemTypes = map[Code]string{
	CodeValidation:      TypeValidation,
	CodeUnknownWindow:   TypeUnknownWindow,
	CodeUnknownLocation: TypeUnknownLocation,
	CodeDatasetMissing:  TypeDatasetMissing,
	CodeRateLimited:     TypeRateLimit,
	CodeUnavailable:     TypeServiceDown,
}

// APIError is a request-level failure with a fixed HTTP status. Handlers
// return it to ErrorHandler, which renders it as a problem document.
type APIError struct {
	Status  int
	Code    Code
	Message string
	Details interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError names one rejected field or query parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(status int, code Code, message string, details interface{}) *APIError {
	return &APIError{Status: status, Code: code, Message: message, Details: details}
}

// ErrRateLimitExceeded is returned once a client exhausts its token bucket.
var ErrRateLimitExceeded = newAPIError(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)

// ErrValidation rejects a single parameter.
func ErrValidation(field, message string) *APIError {
	return newAPIError(http.StatusBadRequest, CodeValidation, "Request validation failed",
		ValidationError{Field: field, Message: message})
}

// UnknownWindowError reports a window name other than last or previous.
func UnknownWindowError(name string) *APIError {
	return newAPIError(http.StatusBadRequest, CodeUnknownWindow,
		fmt.Sprintf("Unknown year window %q", name),
		ValidationError{Field: "window", Message: "must be one of: last previous"})
}

// UnknownLocationError reports a location with no rows in the window.
func UnknownLocationError(location string) *APIError {
	return newAPIError(http.StatusNotFound, CodeUnknownLocation,
		fmt.Sprintf("No data for location %q", location), location)
}

// DatasetUnavailableError is returned while no dataset is loaded.
func DatasetUnavailableError() *APIError {
	return newAPIError(http.StatusServiceUnavailable, CodeDatasetMissing, "Dataset is not loaded", nil)
}

// UnavailableError reports an optional endpoint that is switched off.
func UnavailableError(what string) *APIError {
	return newAPIError(http.StatusServiceUnavailable, CodeUnavailable, what+" is disabled", nil)
}
