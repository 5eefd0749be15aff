package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"sentinel", ErrNotFound, http.StatusNotFound},
		{"wrapped", fmt.Errorf("property p1: %w", ErrForbidden), http.StatusForbidden},
		{"invalid", Invalid("rent must be positive, got %d", -1), http.StatusBadRequest},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("%s: StatusOf = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestWrappedSentinelIsMatchable(t *testing.T) {
	err := fmt.Errorf("lead l1: %w", ErrConflict)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("errors.Is(%v, ErrConflict) = false", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(%v, ErrNotFound) = true", err)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug {
		t.Errorf("ParseLevel(DEBUG) != debug")
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Errorf("ParseLevel(bogus) != info")
	}
}
