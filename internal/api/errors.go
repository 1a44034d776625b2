package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the REST client.
var (
	// ErrServerUnavailable is returned when the server is not reachable.
	ErrServerUnavailable = errors.New("shoko server unavailable")

	// ErrUnauthorized is returned when the API key is invalid or missing.
	ErrUnauthorized = errors.New("unauthorized: invalid or missing api key")

	// ErrNotFound is returned when a requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidRequest is returned when the server rejects the request body.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout is returned when a request times out.
	ErrTimeout = errors.New("request timed out")
)

// APIError wraps errors from the server with the operation that failed.
type APIError struct {
	Operation  string // The operation that failed (e.g., "patch_settings")
	StatusCode int    // HTTP status code (0 if not HTTP error)
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s failed (HTTP %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError.
func NewAPIError(operation string, statusCode int, err error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsServerUnavailable returns true if the error indicates the server is unavailable.
func IsServerUnavailable(err error) bool {
	return errors.Is(err, ErrServerUnavailable)
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout returns true if the error indicates a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// statusError maps an HTTP status to a sentinel, keeping the server's
// message when there is one.
func statusError(code int, body string) error {
	var base error
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		base = ErrUnauthorized
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = ErrInvalidRequest
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		base = ErrTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		base = ErrServerUnavailable
	default:
		if body == "" {
			return fmt.Errorf("unexpected status %d", code)
		}
		return fmt.Errorf("unexpected status %d: %s", code, body)
	}
	if body == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, body)
}
