// Package transport holds the HTTP error taxonomy and retry policy shared
// by the hosting and model API adapters.
package transport

import "fmt"

// ErrorType represents the category of API error that occurred.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeNotFound
	ErrTypeValidation
	ErrTypeServiceUnavailable
	ErrTypeTimeout
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeNotFound:
		return "not found"
	case ErrTypeValidation:
		return "validation failed"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error represents an API error with enough context to decide on retries.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Service    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Service, e.Type.String(), e.Message, e.StatusCode)
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// FromStatusCode maps an HTTP status code to a typed Error.
func FromStatusCode(service string, statusCode int, message string) *Error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return &Error{Type: ErrTypeAuthentication, Message: message, StatusCode: statusCode, Service: service}
	case statusCode == 404:
		return &Error{Type: ErrTypeNotFound, Message: message, StatusCode: statusCode, Service: service}
	case statusCode == 422 || statusCode == 400:
		return &Error{Type: ErrTypeValidation, Message: message, StatusCode: statusCode, Service: service}
	case statusCode == 429:
		return &Error{Type: ErrTypeRateLimit, Message: message, StatusCode: statusCode, Retryable: true, Service: service}
	case statusCode >= 500:
		return &Error{Type: ErrTypeServiceUnavailable, Message: message, StatusCode: statusCode, Retryable: true, Service: service}
	default:
		return &Error{Type: ErrTypeUnknown, Message: message, StatusCode: statusCode, Service: service}
	}
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(service, message string) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   message,
		Retryable: true,
		Service:   service,
	}
}
