package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork indicates the backend could not be reached or answered with a
	// server-side failure.
	ErrNetwork = errors.New("remote store unreachable")

	// ErrAuth indicates no authenticated caller identity was available, or the
	// backend rejected it.
	ErrAuth = errors.New("remote store authentication failed")

	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("remote store request timed out")

	// ErrNotFound indicates the backend holds no record with the requested ID.
	ErrNotFound = errors.New("remote record not found")

	// ErrRejected indicates the backend refused a well-formed request
	// (conflicting ID, invalid record).
	ErrRejected = errors.New("remote store rejected request")
)

// APIError carries the status and body of a non-2xx response. It unwraps to
// the sentinel matching its status class.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote API error: status=%d, message=%s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout:
		return ErrTimeout
	case e.StatusCode >= 500:
		return ErrNetwork
	default:
		return ErrRejected
	}
}

// IsTransient reports whether err is a connectivity-class failure (network,
// timeout, auth) as opposed to a definite answer from the backend.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrAuth)
}
