package errs

import (
	"fmt"
	"net/http"
)

// APIError is returned for non-2xx backend responses.
type APIError struct {
	Method string
	Path   string
	Status int
	// Detail is the backend's `detail` (or `error`) message, if any.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap maps the status onto sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() []error {
	out := []error{ErrNetwork}
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		out = append(out, ErrAuth)
	case http.StatusNotFound:
		out = append(out, ErrNotFound)
	}
	return out
}
