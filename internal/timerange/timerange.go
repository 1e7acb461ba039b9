// Package timerange resolves the dashboard's relative time ranges into
// concrete windows against an explicit reference instant.
package timerange

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// ErrUnknownRange is returned by ParseRange for unrecognised range names.
var ErrUnknownRange = errors.New("unknown time range")

// Range is a named relative time range.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	RangeAll Range = "all"
)

// Ranges lists every supported range in display order.
var Ranges = []Range{Range7d, Range30d, Range90d, RangeAll}

const day = 24 * time.Hour

// ParseRange maps a case-insensitive range name to a Range.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Ranges, r) {
		return r, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownRange)
}

// Days returns the number of days the range spans, or 0 for unbounded.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 90
	default:
		return 0
	}
}

// Window is a resolved time interval. A nil bound is open.
type Window struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Resolve turns r into a window ending at now. Bounded ranges start exactly
// N×24h before now with no calendar alignment. RangeAll and any unrecognised
// value yield an unbounded window.
func Resolve(r Range, now time.Time) Window {
	days := r.Days()
	if days == 0 {
		return Window{}
	}
	start := now.Add(-time.Duration(days) * day)
	end := now
	return Window{Start: &start, End: &end}
}

// Bounded reports whether either side of the window is set.
func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

// FilterSessions returns the sessions whose date falls inside w, in input
// order. The result never aliases the input.
func FilterSessions(sessions []telemetry.SessionSummary, w Window) []telemetry.SessionSummary {
	out := make([]telemetry.SessionSummary, 0, len(sessions))
	if !w.Bounded() {
		return append(out, sessions...)
	}
	for _, s := range sessions {
		if w.Contains(s.SessionDate) {
			out = append(out, s)
		}
	}
	return out
}
