package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/units"
)

// NoFavoriteTrack names the favorite track when no session has one.
const NoFavoriteTrack = "N/A"

// TrackCount pairs a track name with its session count.
type TrackCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardStats is the headline summary across a set of sessions.
//
// ConsistencyScore is 0 with HasConsistency false for an empty input. With
// fewer than two valid laps it is 100 and HasConsistency stays false.
type DashboardStats struct {
	TotalSessions     int           `json:"total_sessions"`
	TotalLaps         int           `json:"total_laps"`
	TotalDistanceKm   float64       `json:"total_distance_km"`
	AverageLapTime    time.Duration `json:"average_lap_time"`
	BestLapTime       time.Duration `json:"best_lap_time"`
	FavoriteTrack     TrackCount    `json:"favorite_track"`
	RecentImprovement float64       `json:"recent_improvement"`
	ConsistencyScore  float64       `json:"consistency_score"`
	HasConsistency    bool          `json:"has_consistency"`
	TracksVisited     int           `json:"tracks_visited"`
	CarsUsed          int           `json:"cars_used"`
}

// Aggregate computes dashboard statistics over sessions. A session with a
// negative lap count or best lap time fails with ErrInvalidInput.
func Aggregate(sessions []telemetry.SessionSummary, opts ...Option) (DashboardStats, error) {
	o := buildOptions(opts)
	p, err := newPartial(sessions, 0, o.recentWindow)
	if err != nil {
		return DashboardStats{}, err
	}
	return p.finalize(o), nil
}

type trackTally struct {
	count     int
	firstSeen int
}

type datedLap struct {
	date  time.Time
	best  time.Duration
	index int
}

// partial holds mergeable aggregates for a contiguous slice of the input.
// Indexes are global so that first-seen and date ordering survive merging.
type partial struct {
	sessions  int
	laps      int
	validLaps int
	bestSum   time.Duration
	bestMin   time.Duration
	moments   Moments
	tracks    map[string]*trackTally
	cars      map[string]struct{}
	recent    []datedLap // most recent first, at most keep entries
	keep      int
}

func newPartial(sessions []telemetry.SessionSummary, offset, window int) (*partial, error) {
	p := emptyPartial(window)
	lapTimes := make([]float64, 0, len(sessions))
	dated := make([]datedLap, 0, len(sessions))
	for i, s := range sessions {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		idx := offset + i
		p.sessions++
		p.laps += s.LapCount

		if s.HasValidLap() {
			p.validLaps++
			p.bestSum += s.BestLapTime
			if p.validLaps == 1 || s.BestLapTime < p.bestMin {
				p.bestMin = s.BestLapTime
			}
			lapTimes = append(lapTimes, units.Milliseconds(s.BestLapTime))
		}
		if s.TrackName != "" {
			if t, ok := p.tracks[s.TrackName]; ok {
				t.count++
			} else {
				p.tracks[s.TrackName] = &trackTally{count: 1, firstSeen: idx}
			}
		}
		if s.CarModel != "" {
			p.cars[s.CarModel] = struct{}{}
		}
		dated = append(dated, datedLap{date: s.SessionDate, best: s.BestLapTime, index: idx})
	}
	p.moments = MomentsOf(lapTimes)
	p.recent = mostRecent(dated, p.keep)
	return p, nil
}

// mostRecent orders by date descending, then input order, and truncates.
func mostRecent(in []datedLap, keep int) []datedLap {
	slices.SortFunc(in, func(a, b datedLap) int {
		if c := b.date.Compare(a.date); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	if len(in) > keep {
		in = in[:keep]
	}
	return in
}

func (p *partial) merge(o *partial) {
	p.sessions += o.sessions
	p.laps += o.laps
	if o.validLaps > 0 && (p.validLaps == 0 || o.bestMin < p.bestMin) {
		p.bestMin = o.bestMin
	}
	p.validLaps += o.validLaps
	p.bestSum += o.bestSum
	p.moments.Merge(o.moments)
	for name, t := range o.tracks {
		if mine, ok := p.tracks[name]; ok {
			mine.count += t.count
			mine.firstSeen = min(mine.firstSeen, t.firstSeen)
		} else {
			p.tracks[name] = &trackTally{count: t.count, firstSeen: t.firstSeen}
		}
	}
	for car := range o.cars {
		p.cars[car] = struct{}{}
	}
	combined := make([]datedLap, 0, len(p.recent)+len(o.recent))
	combined = append(combined, p.recent...)
	combined = append(combined, o.recent...)
	p.recent = mostRecent(combined, p.keep)
}

func (p *partial) finalize(o options) DashboardStats {
	stats := DashboardStats{
		TotalSessions:   p.sessions,
		TotalLaps:       p.laps,
		TotalDistanceKm: float64(p.laps) * o.trackLengthKm,
		FavoriteTrack:   p.favorite(o.tieBreak),
		TracksVisited:   len(p.tracks),
		CarsUsed:        len(p.cars),
	}
	if p.sessions == 0 {
		return stats
	}
	if p.validLaps > 0 {
		stats.AverageLapTime = time.Duration(math.Round(float64(p.bestSum) / float64(p.validLaps)))
		stats.BestLapTime = p.bestMin
	}
	stats.ConsistencyScore = p.moments.Score()
	stats.HasConsistency = p.moments.N >= 2
	stats.RecentImprovement = recentImprovement(p.recent, o.recentWindow)
	return stats
}

func (p *partial) favorite(tie TieBreak) TrackCount {
	best := TrackCount{Name: NoFavoriteTrack}
	bestSeen := -1
	for name, t := range p.tracks {
		better := t.count > best.Count
		if t.count == best.Count && bestSeen >= 0 {
			switch tie {
			case TieAlphabetical:
				better = name < best.Name
			default:
				better = t.firstSeen < bestSeen
			}
		}
		if better {
			best = TrackCount{Name: name, Count: t.count}
			bestSeen = t.firstSeen
		}
	}
	return best
}

// recentImprovement compares the mean best lap of the newest window
// sessions with the window before it, as a percentage of the older mean.
// Sessions without a valid lap count as zero in either mean.
func recentImprovement(byDateDesc []datedLap, window int) float64 {
	if len(byDateDesc) <= window {
		return 0
	}
	recent := byDateDesc[:window]
	previous := byDateDesc[window:min(len(byDateDesc), 2*window)]
	prevMean := meanBest(previous)
	if prevMean == 0 {
		return 0
	}
	return (prevMean - meanBest(recent)) / prevMean * 100
}

func meanBest(laps []datedLap) float64 {
	if len(laps) == 0 {
		return 0
	}
	var sum float64
	for _, l := range laps {
		if l.best > 0 {
			sum += units.Milliseconds(l.best)
		}
	}
	return sum / float64(len(laps))
}
