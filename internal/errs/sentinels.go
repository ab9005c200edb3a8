// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across adapter/controller layers.
var (
	// ErrNetwork indicates a transport failure or a non-2xx response.
	ErrNetwork = errors.New("network error")

	// ErrValidation indicates client-side input rejected before dispatch.
	ErrValidation = errors.New("validation error")

	// ErrAuth indicates failed authentication/authorization (401/403).
	ErrAuth = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist on the backend.
	ErrNotFound = errors.New("not found")

	// ErrEmptyNote indicates a submission with blank title and content.
	ErrEmptyNote = fmt.Errorf("%w: title and content are empty", ErrValidation)

	// ErrPartialUpdate indicates a recreate-style update whose create half succeeded
	// while the delete of the old note failed. Both copies exist on the backend.
	ErrPartialUpdate = errors.New("partial update: old note not deleted")
)
