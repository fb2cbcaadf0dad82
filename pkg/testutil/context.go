package testutil

import (
	"context"
	"testing"
	"time"

	"coreteller/pkg/requestcontext"
)

// ContextWithTime returns a context carrying a fixed clock so age and
// maturity calculations are deterministic in tests.
func ContextWithTime(t *testing.T, at time.Time) context.Context {
	t.Helper()
	return requestcontext.WithTime(context.Background(), at)
}

// MustParseDate parses a YYYY-MM-DD date or fails the test.
func MustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
