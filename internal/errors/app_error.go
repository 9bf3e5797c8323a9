package errors

import "fmt"

// ErrorType classifies failures that happen outside a request, mostly while
// the dataset is being located and loaded.
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError carries an ErrorType and optional key/value context next to the
// wrapped cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := "[" + string(e.Type) + "] " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext records key on the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// Wrap builds an AppError of the given type. cause may be nil.
func Wrap(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause}
}

// NewParsingError wraps a source that could not be decoded.
func NewParsingError(message string, cause error) *AppError {
	return Wrap(ErrTypeParsing, message, cause)
}

// NewStorageError wraps a filesystem failure.
func NewStorageError(message string, cause error) *AppError {
	return Wrap(ErrTypeStorage, message, cause)
}

// NewDataValidationError wraps a source that decoded but holds rejected values.
func NewDataValidationError(message string, cause error) *AppError {
	return Wrap(ErrTypeValidation, message, cause)
}

func NewNotFoundError(resource string) *AppError {
	return Wrap(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func NewConfigError(message string, cause error) *AppError {
	return Wrap(ErrTypeConfig, message, cause)
}
