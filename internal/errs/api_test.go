package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError_IsMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status       int
		auth, notFnd bool
	}{
		{http.StatusBadRequest, false, false},
		{http.StatusUnauthorized, true, false},
		{http.StatusForbidden, true, false},
		{http.StatusNotFound, false, true},
		{http.StatusInternalServerError, false, false},
	}
	for _, c := range cases {
		err := fmt.Errorf("wrapped: %w", &APIError{Method: "GET", Path: "/notes", Status: c.status})
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("%d: want ErrNetwork", c.status)
		}
		if errors.Is(err, ErrAuth) != c.auth {
			t.Fatalf("%d: ErrAuth mismatch", c.status)
		}
		if errors.Is(err, ErrNotFound) != c.notFnd {
			t.Fatalf("%d: ErrNotFound mismatch", c.status)
		}
		var ae *APIError
		if !errors.As(err, &ae) || ae.Status != c.status {
			t.Fatalf("%d: errors.As failed", c.status)
		}
	}
}

func TestAPIError_Message(t *testing.T) {
	t.Parallel()

	e := &APIError{Method: "GET", Path: "/calc/sum", Status: 400, Detail: "Both 'a' and 'b' query params are required"}
	if !strings.Contains(e.Error(), "Both 'a'") || !strings.Contains(e.Error(), "400") {
		t.Fatalf("unexpected message: %q", e.Error())
	}
	e.Detail = ""
	if e.Error() != "GET /calc/sum: 400 Bad Request" {
		t.Fatalf("unexpected message: %q", e.Error())
	}
}

func TestErrEmptyNote_IsValidation(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrEmptyNote, ErrValidation) {
		t.Fatalf("ErrEmptyNote must match ErrValidation")
	}
}
