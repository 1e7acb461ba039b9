package telemetry

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/telemetry.report/internal/units"
)

// FieldState classifies a nullable numeric field from the record store.
type FieldState int

const (
	// FieldAbsent means the field was not supplied. It defaults to zero.
	FieldAbsent FieldState = iota
	// FieldValid means the field holds a usable value.
	FieldValid
	// FieldInvalid means the field is present but negative or not finite.
	FieldInvalid
)

func (s FieldState) String() string {
	switch s {
	case FieldAbsent:
		return "absent"
	case FieldValid:
		return "valid"
	case FieldInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("FieldState(%d)", int(s))
	}
}

// CheckDuration converts a millisecond field into a duration.
func CheckDuration(ms *float64) (time.Duration, FieldState) {
	if ms == nil {
		return 0, FieldAbsent
	}
	v := *ms
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, FieldInvalid
	}
	if v > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, FieldInvalid
	}
	return units.FromMilliseconds(v), FieldValid
}

// CheckCount converts a count field. Fractional counts are invalid.
func CheckCount(n *float64) (int, FieldState) {
	if n == nil {
		return 0, FieldAbsent
	}
	v := *n
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, FieldInvalid
	}
	return int(v), FieldValid
}

// SessionRecord is a session as the record store emits it.
type SessionRecord struct {
	ID             string   `json:"id"`
	TrackName      string   `json:"track_name"`
	CarModel       string   `json:"car_model"`
	SessionType    string   `json:"session_type"`
	SessionDate    string   `json:"session_date"` // RFC 3339 or YYYY-MM-DD
	BestLapTimeMs  *float64 `json:"best_lap_time_ms"`
	LapCount       *float64 `json:"lap_count"`
	TrackCondition string   `json:"track_condition"`
}

// Summary validates the record and converts it. Absent numeric fields become
// zero; invalid ones are rejected with an error wrapping ErrInvalidInput.
func (r SessionRecord) Summary() (SessionSummary, error) {
	best, state := CheckDuration(r.BestLapTimeMs)
	if state == FieldInvalid {
		return SessionSummary{}, fmt.Errorf("session %q: best_lap_time_ms %v: %w", r.ID, *r.BestLapTimeMs, ErrInvalidInput)
	}
	laps, state := CheckCount(r.LapCount)
	if state == FieldInvalid {
		return SessionSummary{}, fmt.Errorf("session %q: lap_count %v: %w", r.ID, *r.LapCount, ErrInvalidInput)
	}
	date, err := parseSessionDate(r.SessionDate)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("session %q: session_date %q: %w", r.ID, r.SessionDate, ErrInvalidInput)
	}
	return SessionSummary{
		ID:             r.ID,
		TrackName:      strings.TrimSpace(r.TrackName),
		CarModel:       strings.TrimSpace(r.CarModel),
		SessionType:    r.SessionType,
		SessionDate:    date,
		BestLapTime:    best,
		LapCount:       laps,
		TrackCondition: r.TrackCondition,
	}, nil
}

// parseSessionDate accepts RFC 3339 timestamps and bare dates. An empty
// string is an absent date and yields the zero time.
func parseSessionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// LapRecord is a lap as the record store emits it.
type LapRecord struct {
	SessionID string   `json:"session_id"`
	LapNumber *float64 `json:"lap_number"`
	LapTimeMs *float64 `json:"lap_time_ms"`
	Valid     *bool    `json:"valid"`
}

// Lap validates the record and converts it. An absent valid flag means valid.
func (r LapRecord) Lap() (Lap, error) {
	number, state := CheckCount(r.LapNumber)
	if state == FieldInvalid {
		return Lap{}, fmt.Errorf("lap %s/%v: lap_number: %w", r.SessionID, *r.LapNumber, ErrInvalidInput)
	}
	lapTime, state := CheckDuration(r.LapTimeMs)
	if state == FieldInvalid {
		return Lap{}, fmt.Errorf("lap %s/%d: lap_time_ms %v: %w", r.SessionID, number, *r.LapTimeMs, ErrInvalidInput)
	}
	valid := true
	if r.Valid != nil {
		valid = *r.Valid
	}
	return Lap{
		SessionID: r.SessionID,
		LapNumber: number,
		LapTime:   lapTime,
		Valid:     valid,
	}, nil
}
