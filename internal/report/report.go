// Package report assembles dashboard statistics, distributions and a track
// map into a single exportable document, and renders it as JSON, an HTML
// chart page and a PNG track map.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/telemetry.report/internal/analytics"
	"github.com/banshee-data/telemetry.report/internal/config"
	"github.com/banshee-data/telemetry.report/internal/monitoring"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/timerange"
	"github.com/banshee-data/telemetry.report/internal/timeutil"
	"github.com/banshee-data/telemetry.report/internal/trackmap"
	"github.com/banshee-data/telemetry.report/internal/units"
)

// Input is the raw material for a report.
type Input struct {
	Sessions []telemetry.SessionSummary
	Laps     []telemetry.Lap
	Points   []telemetry.TelemetryPoint

	// SessionID selects the session whose best lap is mapped. When empty
	// the session with the fastest best lap in range is used.
	SessionID string
}

// Display holds pre-formatted headline figures.
type Display struct {
	BestLap       string `json:"best_lap"`
	AverageLap    string `json:"average_lap"`
	TotalDistance string `json:"total_distance"`
}

// TrackMap is the projected best lap of one session.
type TrackMap struct {
	SessionID string            `json:"session_id"`
	LapNumber int               `json:"lap_number"`
	LapTime   string            `json:"lap_time"`
	Viewport  trackmap.Viewport `json:"viewport"`
	Polyline  trackmap.Polyline `json:"polyline"`
	Smoothed  trackmap.Polyline `json:"smoothed"`
}

// Report is the exported document.
type Report struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	Range         timerange.Range          `json:"range"`
	Window        timerange.Window         `json:"window"`
	Timezone      string                   `json:"timezone"`
	Units         string                   `json:"units"`
	TotalDistance float64                  `json:"total_distance"`
	Display       Display                  `json:"display"`
	Dashboard     analytics.DashboardStats `json:"dashboard"`
	Distributions analytics.Distributions  `json:"distributions"`
	TrackMap      *TrackMap                `json:"track_map,omitempty"`
}

// Builder produces reports. Results for identical session sets are served
// from its cache until they expire.
type Builder struct {
	cfg   *config.AnalyticsConfig
	clock timeutil.Clock
	cache *analytics.Cache
}

// NewBuilder creates a Builder. A nil cfg uses defaults and a nil clock the
// real clock.
func NewBuilder(cfg *config.AnalyticsConfig, clock timeutil.Clock) *Builder {
	if cfg == nil {
		cfg = config.EmptyAnalyticsConfig()
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Builder{
		cfg:   cfg,
		clock: clock,
		cache: analytics.NewCache(cfg.CacheConfig(), clock),
	}
}

// Build filters sessions to rng, then computes the dashboard, the
// distributions and the track map.
func (b *Builder) Build(ctx context.Context, in Input, rng timerange.Range) (Report, error) {
	now := b.clock.Now()
	window := timerange.Resolve(rng, now)
	sessions := timerange.FilterSessions(in.Sessions, window)
	monitoring.Diagf("range %s kept %d of %d sessions", rng, len(sessions), len(in.Sessions))

	stats, err := b.cache.Dashboard(ctx, sessions)
	if err != nil {
		return Report{}, fmt.Errorf("aggregate sessions: %w", err)
	}

	unit := b.cfg.GetDistanceUnits()
	distance := units.ConvertDistance(stats.TotalDistanceKm, unit)
	r := Report{
		GeneratedAt:   now,
		Range:         rng,
		Window:        window,
		Timezone:      b.cfg.Location().String(),
		Units:         unit,
		TotalDistance: distance,
		Display: Display{
			BestLap:       units.FormatLapTime(stats.BestLapTime),
			AverageLap:    units.FormatLapTime(stats.AverageLapTime),
			TotalDistance: fmt.Sprintf("%.1f %s", distance, unit),
		},
		Dashboard:     stats,
		Distributions: b.cache.Distributions(sessions),
	}

	tm, err := b.trackMap(in, sessions)
	if err != nil {
		return Report{}, err
	}
	r.TrackMap = tm
	return r, nil
}

func (b *Builder) trackMap(in Input, sessions []telemetry.SessionSummary) (*TrackMap, error) {
	id := in.SessionID
	if id == "" {
		id = fastestSession(sessions)
	}
	if id == "" {
		return nil, nil
	}

	vp := b.cfg.Viewport()
	poly, lap, ok, err := trackmap.ProjectBestLap(analytics.SessionLaps(in.Laps, id), in.Points, vp, b.cfg.GetSkipInvalidLaps())
	if err != nil {
		return nil, fmt.Errorf("track map for session %s: %w", id, err)
	}
	if !ok {
		monitoring.Opsf("session %s has no lap with a positive time; skipping track map", id)
		return nil, nil
	}
	if len(poly.Points) == 0 {
		monitoring.Opsf("session %s lap %d has no position samples", id, lap.LapNumber)
	}
	return &TrackMap{
		SessionID: id,
		LapNumber: lap.LapNumber,
		LapTime:   units.FormatLapTime(lap.LapTime),
		Viewport:  vp,
		Polyline:  poly,
		Smoothed:  trackmap.Smooth(poly, b.cfg.GetSmoothSegments()),
	}, nil
}

// fastestSession returns the ID of the session with the smallest valid best
// lap, first in input order on ties.
func fastestSession(sessions []telemetry.SessionSummary) string {
	var (
		best  telemetry.SessionSummary
		found bool
	)
	for _, s := range sessions {
		if s.HasValidLap() && (!found || s.BestLapTime < best.BestLapTime) {
			best, found = s, true
		}
	}
	return best.ID
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
