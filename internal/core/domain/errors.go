package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrBadRequest indicates malformed or missing request inputs
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates a missing or invalid session token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOAuthDenied indicates the user or provider declined the authorization
	ErrOAuthDenied = errors.New("oauth denied")

	// ErrMissingAttempt indicates the login-attempt cookie was absent
	ErrMissingAttempt = errors.New("missing oauth attempt")

	// ErrInvalidAttempt indicates the login-attempt token failed verification
	ErrInvalidAttempt = errors.New("invalid oauth attempt")

	// ErrStateMismatch indicates the callback state did not match the attempt
	ErrStateMismatch = errors.New("state mismatch")

	// ErrTokenExchangeFailed indicates the code-for-token exchange failed upstream
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrRefreshFailed indicates the delegated-token refresh failed upstream
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrSubjectUnresolved indicates the provider identity could not be determined
	ErrSubjectUnresolved = errors.New("subject unresolved")

	// ErrNoToken indicates no delegated token exists for the user
	ErrNoToken = errors.New("no delegated token")

	// ErrCommandFailed indicates a vehicle command failed upstream
	ErrCommandFailed = errors.New("command failed")

	// ErrVehicleListFailed indicates the vehicle list call failed upstream
	ErrVehicleListFailed = errors.New("vehicle list failed")
)

// UpstreamError carries the provider's HTTP status and raw body alongside
// the sentinel that classifies the failure. The body is passed through to
// clients for diagnosis, never interpreted. A zero status means the
// provider reported the failure without an HTTP response of its own, as
// with an error query parameter on the OAuth callback.
type UpstreamError struct {
	Err        error
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Body)
	}
	return fmt.Sprintf("%v: provider returned %d: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError classifies a provider failure under the given sentinel.
func NewUpstreamError(sentinel error, status int, body string) *UpstreamError {
	return &UpstreamError{Err: sentinel, StatusCode: status, Body: body}
}
