package analytics

import "github.com/banshee-data/telemetry.report/internal/telemetry"

// BestLap returns the lap with the smallest strictly positive time. Ties go
// to the earliest lap in input order. It reports false when no lap has a
// positive time, in which case no track map can be drawn.
func BestLap(laps []telemetry.Lap) (telemetry.Lap, bool) {
	return bestLap(laps, false)
}

// BestValidLap is BestLap restricted to laps not flagged invalid.
func BestValidLap(laps []telemetry.Lap) (telemetry.Lap, bool) {
	return bestLap(laps, true)
}

func bestLap(laps []telemetry.Lap, validOnly bool) (telemetry.Lap, bool) {
	var best telemetry.Lap
	found := false
	for _, l := range laps {
		if l.LapTime <= 0 || (validOnly && !l.Valid) {
			continue
		}
		if !found || l.LapTime < best.LapTime {
			best = l
			found = true
		}
	}
	return best, found
}

// SessionLaps returns the laps belonging to sessionID in input order.
func SessionLaps(laps []telemetry.Lap, sessionID string) []telemetry.Lap {
	out := make([]telemetry.Lap, 0)
	for _, l := range laps {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	return out
}
