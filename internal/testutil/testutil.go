// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertClose fails the test if got and want differ by more than tol.
func AssertClose(t testing.TB, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (±%v)", got, want, tol)
	}
}

// BaseTime is the reference instant fixtures are dated from.
var BaseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Session builds a summary dated daysAgo days before BaseTime.
func Session(id, track, car string, daysAgo int, bestMs int64, laps int) telemetry.SessionSummary {
	return telemetry.SessionSummary{
		ID:          id,
		TrackName:   track,
		CarModel:    car,
		SessionType: telemetry.SessionPractice,
		SessionDate: BaseTime.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		BestLapTime: time.Duration(bestMs) * time.Millisecond,
		LapCount:    laps,
	}
}

// Sessions returns a dozen sessions across three tracks and two cars,
// listed oldest first. Session s-07 has no valid lap.
func Sessions() []telemetry.SessionSummary {
	return []telemetry.SessionSummary{
		Session("s-01", "Monza", "GT3", 30, 110000, 10),
		Session("s-02", "Spa", "GT3", 28, 140000, 8),
		Session("s-03", "Monza", "GT3", 25, 109000, 12),
		Session("s-04", "Suzuka", "LMP2", 21, 100000, 6),
		Session("s-05", "Monza", "LMP2", 18, 108500, 9),
		Session("s-06", "Spa", "GT3", 14, 138000, 7),
		Session("s-07", "Monza", "GT3", 11, 0, 3),
		Session("s-08", "Suzuka", "LMP2", 9, 99000, 11),
		Session("s-09", "Spa", "GT3", 7, 137500, 5),
		Session("s-10", "Monza", "GT3", 5, 107000, 14),
		Session("s-11", "Suzuka", "LMP2", 3, 98500, 10),
		Session("s-12", "Monza", "LMP2", 1, 106000, 15),
	}
}

// SquareLap returns four samples at the corners of a 100×100 square in the
// x/z plane with varying height.
func SquareLap() []telemetry.Position {
	return []telemetry.Position{
		{X: 0, Y: 1, Z: 0},
		{X: 100, Y: 2, Z: 0},
		{X: 100, Y: 3, Z: 100},
		{X: 0, Y: 4, Z: 100},
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
