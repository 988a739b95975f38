package agentwire

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidRequest indicates the turn request parameters are invalid.
	ErrInvalidRequest = errors.New("agentwire: invalid request")

	// ErrBackendUnavailable indicates the backend is down or unreachable.
	ErrBackendUnavailable = errors.New("agentwire: backend unavailable")

	// ErrSessionNotFound indicates the referenced session does not exist.
	ErrSessionNotFound = errors.New("agentwire: session not found")

	// ErrApprovalNotFound indicates the referenced approval is not pending.
	ErrApprovalNotFound = errors.New("agentwire: approval not found")

	// ErrReasonRequired indicates a rejection was attempted without the
	// reason the request's config makes mandatory.
	ErrReasonRequired = errors.New("agentwire: rejection reason required")
)

// ValidationError represents a local validation failure. It is produced
// before any network call and surfaced synchronously to the caller.
type ValidationError struct {
	Field  string // The field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped sentinel (usually ErrInvalidRequest or ErrReasonRequired)
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for '%s' (value: %v): %s (%v)", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BackendError represents a failure reported by the agent backend's REST
// surface (non-2xx status on a request/response call).
type BackendError struct {
	StatusCode int    // HTTP status code
	Message    string // Error message from the backend, if any
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.StatusCode)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is potentially retryable. The core never
// retries on its own; retry policy belongs to the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Retryable
	}

	return errors.Is(err, ErrBackendUnavailable)
}

// IsValidationError checks if an error is a local validation failure that
// never reached the network.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
