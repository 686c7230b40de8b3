package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an API failure.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// APIError is an error response from the search backend.
type APIError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	ServerCode string    `json:"code,omitempty"`
	Code       int       `json:"-"` // HTTP status code
}

func (e *APIError) Error() string {
	if e.ServerCode != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.ServerCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// IsValidation reports whether the error is a validation error.
func (e *APIError) IsValidation() bool {
	return e.Type == ErrorTypeValidation
}

// IsNotFound reports whether the error is a not-found error.
func (e *APIError) IsNotFound() bool {
	return e.Type == ErrorTypeNotFound
}

// Retryable reports whether repeating the request can plausibly succeed.
func (e *APIError) Retryable() bool {
	return e.Type == ErrorTypeUnavailable || e.Type == ErrorTypeInternal || e.Type == ErrorTypeRateLimited
}

// AsAPIError attempts to interpret an error as an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func errorTypeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusBadRequest:
		return ErrorTypeValidation
	case status == http.StatusNotFound:
		return ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		return ErrorTypeRateLimited
	case status == http.StatusServiceUnavailable:
		return ErrorTypeUnavailable
	case status >= 500:
		return ErrorTypeInternal
	default:
		return ErrorTypeUnknown
	}
}
