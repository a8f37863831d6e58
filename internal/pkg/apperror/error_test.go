package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{New(KindBusinessRule, "MINIMUM_ORDER_NOT_MET", "too small"), http.StatusUnprocessableEntity},
		{New(KindForbidden, "FORBIDDEN", "no"), http.StatusForbidden},
		{Conflict("DUPLICATE", "dup"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(KindBusinessRule, "CODE", "message")
	wrapped := fmt.Errorf("create: %w", sentinel)
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped sentinel to match")
	}
	other := New(KindBusinessRule, "OTHER", "message")
	if errors.Is(wrapped, other) {
		t.Fatalf("different codes must not match")
	}
	if !IsNotFound(NotFound("x")) {
		t.Fatalf("expected NotFound to be detected")
	}
}
