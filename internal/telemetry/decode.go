package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/telemetry.report/internal/monitoring"
)

// DecodeSessions reads a JSON array of session records and validates each.
func DecodeSessions(r io.Reader) ([]SessionSummary, error) {
	var records []SessionRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	out := make([]SessionSummary, 0, len(records))
	for i, rec := range records {
		s, err := rec.Summary()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeLaps reads a JSON array of lap records and validates each.
func DecodeLaps(r io.Reader) ([]Lap, error) {
	var records []LapRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode laps: %w", err)
	}
	out := make([]Lap, 0, len(records))
	for i, rec := range records {
		l, err := rec.Lap()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, l)
	}
	return out, nil
}

var requiredColumns = []string{"session_id", "lap_number", "timestamp", "x", "y", "z"}

// ReadTelemetryCSV reads telemetry samples from a CSV stream with a header
// row. Columns are matched by name; session_id, lap_number, timestamp, x, y
// and z are required, vehicle channels are optional. Timestamps are RFC 3339
// or seconds since the Unix epoch. Non-finite numbers are rejected.
func ReadTelemetryCSV(r io.Reader) ([]TelemetryPoint, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []TelemetryPoint{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header missing column %q: %w", name, ErrInvalidInput)
		}
	}

	points := make([]TelemetryPoint, 0)
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		p, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		monitoring.Tracef("csv line %d: %s lap %d at (%g, %g, %g)", line, p.SessionID, p.LapNumber, p.Position.X, p.Position.Y, p.Position.Z)
		points = append(points, p)
	}
	return points, nil
}

func parseRow(row []string, cols map[string]int) (TelemetryPoint, error) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		return v, v != ""
	}
	number := func(name string, required bool) (float64, error) {
		s, ok := field(name)
		if !ok {
			if required {
				return 0, fmt.Errorf("%s: missing: %w", name, ErrInvalidInput)
			}
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%s %q: %w", name, s, ErrInvalidInput)
		}
		return v, nil
	}

	var p TelemetryPoint
	var err error
	if id, ok := field("session_id"); ok {
		p.SessionID = id
	} else {
		return p, fmt.Errorf("session_id: missing: %w", ErrInvalidInput)
	}

	lap, err := number("lap_number", true)
	if err != nil {
		return p, err
	}
	if !integral(lap, 0, math.MaxInt32) {
		return p, fmt.Errorf("lap_number %v: %w", lap, ErrInvalidInput)
	}
	p.LapNumber = int(lap)

	ts, _ := field("timestamp")
	if p.Timestamp, err = parseTimestamp(ts); err != nil {
		return p, fmt.Errorf("timestamp %q: %w", ts, ErrInvalidInput)
	}

	if p.Position.X, err = number("x", true); err != nil {
		return p, err
	}
	if p.Position.Y, err = number("y", true); err != nil {
		return p, err
	}
	if p.Position.Z, err = number("z", true); err != nil {
		return p, err
	}
	if p.SpeedKMH, err = number("speed_kmh", false); err != nil {
		return p, err
	}
	if p.RPM, err = number("rpm", false); err != nil {
		return p, err
	}
	if p.Throttle, err = number("throttle", false); err != nil {
		return p, err
	}
	if p.Brake, err = number("brake", false); err != nil {
		return p, err
	}
	gear, err := number("gear", false)
	if err != nil {
		return p, err
	}
	if !integral(gear, math.MinInt32, math.MaxInt32) {
		return p, fmt.Errorf("gear %v: %w", gear, ErrInvalidInput)
	}
	p.Gear = int(gear)
	return p, nil
}

// integral reports whether v is a whole number within [lo, hi].
func integral(v, lo, hi float64) bool {
	return v == math.Trunc(v) && v >= lo && v <= hi
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}, fmt.Errorf("unrecognised timestamp")
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC(), nil
}
