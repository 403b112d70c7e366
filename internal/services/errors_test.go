package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"greensprint/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUnavailable, "resolver", "lookup", "query failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"resolver", "lookup", "query failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := services.Wrap(nil, "store", "open", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", services.Wrap(services.ErrMalformedInput, "resolver", "classify", "unrecognized", nil), http.StatusBadRequest},
		{"validation", services.Wrap(services.ErrValidation, "trees", "register", "species required", nil), http.StatusBadRequest},
		{"not found", services.Wrap(services.ErrNotFound, "resolver", "lookup", "no match", nil), http.StatusNotFound},
		{"unavailable", services.Wrap(services.ErrUnavailable, "store", "query", "locked", errors.New("busy")), http.StatusServiceUnavailable},
		{"transient", services.Wrap(services.ErrTransient, "notify", "send", "timeout", nil), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}
