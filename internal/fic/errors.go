package fic

import (
	"errors"
	"fmt"
	"net/http"
)

// Common API errors
var (
	// ErrMissingCredentials is returned when the access token or company id is not configured.
	ErrMissingCredentials = errors.New("missing Fatture in Cloud credentials")

	// ErrUnauthorized is returned when the access token is invalid or expired.
	ErrUnauthorized = errors.New("access token rejected")

	// ErrForbidden is returned when the token lacks the scope for the resource.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNotFound is returned when the requested document or company does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when the hourly or monthly API quota is exhausted.
	ErrRateLimited = errors.New("API quota exceeded")

	// ErrInvalidRequest is returned when the API rejects the payload (400/422).
	ErrInvalidRequest = errors.New("request rejected by the API")

	// ErrRequestFailed is returned for transport failures and unexpected status codes.
	ErrRequestFailed = errors.New("API request failed")
)

// APIError wraps errors with the operation and HTTP status that produced them.
type APIError struct {
	// Op is the client method that failed (e.g., "GetExpense").
	Op string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	// Err is the underlying sentinel error.
	Err error

	// Details is the message returned by the API, if any.
	Details string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Details != "":
		return fmt.Sprintf("fic: %s failed (HTTP %d): %s: %v", e.Op, e.StatusCode, e.Details, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fic: %s failed (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	case e.Details != "":
		return fmt.Sprintf("fic: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("fic: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAPIError creates an APIError for the given status code.
func NewAPIError(op string, statusCode int, details string) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: statusCode,
		Err:        errorForStatus(statusCode),
		Details:    details,
	}
}

func errorForStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	default:
		return ErrRequestFailed
	}
}

// retryable reports whether a GET that failed with code may be repeated.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
