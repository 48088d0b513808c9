// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("value = %v, want %v (±%v)", got, want, delta)
	}
}

// AssertClose checks relative closeness of two values, for quantities whose
// scale varies across tests (path lengths, radii).
func AssertClose(t *testing.T, got, want, relTol float64) {
	t.Helper()
	scale := math.Max(math.Abs(want), 1.0)
	if math.IsNaN(got) || math.Abs(got-want) > relTol*scale {
		t.Errorf("value = %v, want %v (rel tol %v)", got, want, relTol)
	}
}
