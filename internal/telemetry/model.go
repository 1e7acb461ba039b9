// Package telemetry defines the session, lap and sample records the analytics
// packages operate on, and the adapters that turn raw store output into them.
package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks a record field that is present but cannot be used:
// negative, NaN, infinite or otherwise malformed.
var ErrInvalidInput = errors.New("invalid input")

// Common session types. Free-form values are accepted.
const (
	SessionPractice   = "practice"
	SessionQualifying = "qualifying"
	SessionRace       = "race"
	SessionTimeTrial  = "time_trial"
)

// SessionSummary is one recorded driving session.
// A BestLapTime of zero or less means the session has no valid lap.
type SessionSummary struct {
	ID             string        `json:"id"`
	TrackName      string        `json:"track_name"`
	CarModel       string        `json:"car_model"`
	SessionType    string        `json:"session_type"`
	SessionDate    time.Time     `json:"session_date"`
	BestLapTime    time.Duration `json:"best_lap_time"`
	LapCount       int           `json:"lap_count"`
	TrackCondition string        `json:"track_condition,omitempty"`
}

// HasValidLap reports whether the session recorded a usable best lap.
func (s SessionSummary) HasValidLap() bool {
	return s.BestLapTime > 0
}

// Validate rejects summaries whose numeric fields cannot be aggregated.
func (s SessionSummary) Validate() error {
	if s.LapCount < 0 {
		return fmt.Errorf("session %q: lap_count %d: %w", s.ID, s.LapCount, ErrInvalidInput)
	}
	if s.BestLapTime < 0 {
		return fmt.Errorf("session %q: best_lap_time %v: %w", s.ID, s.BestLapTime, ErrInvalidInput)
	}
	return nil
}

// Lap is one traversal of the track within a session.
type Lap struct {
	SessionID string        `json:"session_id"`
	LapNumber int           `json:"lap_number"`
	LapTime   time.Duration `json:"lap_time"`
	Valid     bool          `json:"valid"`
}

// Position is a world-space coordinate. Y is height.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TelemetryPoint is one timestamped vehicle-state sample.
type TelemetryPoint struct {
	SessionID string    `json:"session_id"`
	LapNumber int       `json:"lap_number"`
	Timestamp time.Time `json:"timestamp"`
	Position  Position  `json:"position"`
	SpeedKMH  float64   `json:"speed_kmh"`
	RPM       float64   `json:"rpm"`
	Throttle  float64   `json:"throttle"`
	Brake     float64   `json:"brake"`
	Gear      int       `json:"gear"`
}

// LapPoints returns the positions of one lap's samples in input order.
func LapPoints(points []TelemetryPoint, sessionID string, lapNumber int) []Position {
	out := make([]Position, 0)
	for _, p := range points {
		if p.SessionID == sessionID && p.LapNumber == lapNumber {
			out = append(out, p.Position)
		}
	}
	return out
}
