package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// UnknownTrack labels sessions with no track name in the distribution.
const UnknownTrack = "Unknown"

// DayLayout is the format of day keys.
const DayLayout = time.DateOnly

// TrackDistributionEntry is one track's share of sessions.
type TrackDistributionEntry struct {
	Track      string  `json:"track"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// LapTimeProgressPoint is one session's best lap on the progress chart.
//
// AverageLapTime repeats BestLapTime: a session summary carries no per-lap
// times, so no true average can be computed here.
type LapTimeProgressPoint struct {
	Date           string        `json:"date"`
	BestLapTime    time.Duration `json:"best_lap_time"`
	AverageLapTime time.Duration `json:"average_lap_time"`
	Track          string        `json:"track"`
}

// ActivityPoint totals sessions and laps for one day.
type ActivityPoint struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Laps     int    `json:"laps"`
}

// Distributions bundles the three dashboard breakdowns.
type Distributions struct {
	Tracks   []TrackDistributionEntry `json:"tracks"`
	Progress []LapTimeProgressPoint   `json:"progress"`
	Activity []ActivityPoint          `json:"activity"`
}

// DayKey formats t as YYYY-MM-DD in loc. A nil loc means UTC.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// TrackDistribution groups sessions by track, most visited first. Tracks
// with equal counts keep the order they were first seen in.
func TrackDistribution(sessions []telemetry.SessionSummary) []TrackDistributionEntry {
	out := make([]TrackDistributionEntry, 0)
	if len(sessions) == 0 {
		return out
	}
	index := make(map[string]int)
	for _, s := range sessions {
		name := s.TrackName
		if name == "" {
			name = UnknownTrack
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, TrackDistributionEntry{Track: name})
		}
		out[i].Count++
	}
	total := float64(len(sessions))
	for i := range out {
		out[i].Percentage = float64(out[i].Count) / total * 100
	}
	slices.SortStableFunc(out, func(a, b TrackDistributionEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// LapTimeProgress lists the best lap of every session that has one, oldest
// first. Sessions on the same date keep input order.
func LapTimeProgress(sessions []telemetry.SessionSummary, loc *time.Location) []LapTimeProgressPoint {
	valid := make([]telemetry.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		if s.HasValidLap() {
			valid = append(valid, s)
		}
	}
	slices.SortStableFunc(valid, func(a, b telemetry.SessionSummary) int {
		return a.SessionDate.Compare(b.SessionDate)
	})
	out := make([]LapTimeProgressPoint, 0, len(valid))
	for _, s := range valid {
		out = append(out, LapTimeProgressPoint{
			Date:           DayKey(s.SessionDate, loc),
			BestLapTime:    s.BestLapTime,
			AverageLapTime: s.BestLapTime,
			Track:          s.TrackName,
		})
	}
	return out
}

// Activity totals sessions and laps per day, ascending by day.
func Activity(sessions []telemetry.SessionSummary, loc *time.Location) []ActivityPoint {
	out := make([]ActivityPoint, 0)
	index := make(map[string]int)
	for _, s := range sessions {
		day := DayKey(s.SessionDate, loc)
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, ActivityPoint{Date: day})
		}
		out[i].Sessions++
		out[i].Laps += s.LapCount
	}
	slices.SortFunc(out, func(a, b ActivityPoint) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// ComputeDistributions runs all three breakdowns.
func ComputeDistributions(sessions []telemetry.SessionSummary, loc *time.Location) Distributions {
	return Distributions{
		Tracks:   TrackDistribution(sessions),
		Progress: LapTimeProgress(sessions, loc),
		Activity: Activity(sessions, loc),
	}
}
