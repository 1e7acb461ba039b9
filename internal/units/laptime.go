package units

import (
	"fmt"
	"math"
	"time"
)

// Milliseconds returns d as fractional milliseconds, the unit lap-time
// statistics are computed in.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FromMilliseconds converts fractional milliseconds to a Duration, rounding
// to the nearest nanosecond.
func FromMilliseconds(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// FormatLapTime renders d as m:ss.mmm, the format timing screens use.
// Non-positive durations render as "--:--.---".
func FormatLapTime(d time.Duration) string {
	if d <= 0 {
		return "--:--.---"
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	minutes := ms / 60000
	seconds := (ms / 1000) % 60
	millis := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}
