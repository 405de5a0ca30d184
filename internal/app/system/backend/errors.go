// internal/app/system/backend/errors.go
package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for any 401 from the backend. Callers
	// must treat it as an invalid credential and end the session.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrNetwork classifies transport failures: timeouts, refused
	// connections, canceled requests and an open circuit breaker.
	ErrNetwork = errors.New("backend: network error")
)

// APIError is a business or HTTP failure reported by the backend. Message
// is the backend's envelope message and is safe to show to users.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// UserMessage returns a message suitable for a notification banner.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrNetwork):
		return "The server could not be reached. Please try again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}
