package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCheckDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        *float64
		want      time.Duration
		wantState FieldState
	}{
		{"absent", nil, 0, FieldAbsent},
		{"zero", ptr(0), 0, FieldValid},
		{"positive", ptr(90500), 90500 * time.Millisecond, FieldValid},
		{"fractional ms", ptr(1.5), 1500 * time.Microsecond, FieldValid},
		{"negative", ptr(-1), 0, FieldInvalid},
		{"nan", ptr(math.NaN()), 0, FieldInvalid},
		{"inf", ptr(math.Inf(1)), 0, FieldInvalid},
		{"overflow", ptr(1e300), 0, FieldInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, state := CheckDuration(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestCheckCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        *float64
		want      int
		wantState FieldState
	}{
		{"absent", nil, 0, FieldAbsent},
		{"zero", ptr(0), 0, FieldValid},
		{"integral", ptr(12), 12, FieldValid},
		{"fractional", ptr(1.5), 0, FieldInvalid},
		{"negative", ptr(-3), 0, FieldInvalid},
		{"nan", ptr(math.NaN()), 0, FieldInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, state := CheckCount(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestFieldStateString(t *testing.T) {
	assert.Equal(t, "absent", FieldAbsent.String())
	assert.Equal(t, "valid", FieldValid.String())
	assert.Equal(t, "invalid", FieldInvalid.String())
	assert.Equal(t, "FieldState(9)", FieldState(9).String())
}

func TestSessionRecordSummary(t *testing.T) {
	t.Parallel()

	t.Run("valid record", func(t *testing.T) {
		rec := SessionRecord{
			ID:            "s-1",
			TrackName:     " Monza ",
			CarModel:      "GT3",
			SessionType:   SessionRace,
			SessionDate:   "2026-03-01T10:00:00Z",
			BestLapTimeMs: ptr(107500),
			LapCount:      ptr(14),
		}
		got, err := rec.Summary()
		require.NoError(t, err)
		assert.Equal(t, "Monza", got.TrackName)
		assert.Equal(t, 107500*time.Millisecond, got.BestLapTime)
		assert.Equal(t, 14, got.LapCount)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), got.SessionDate)
		assert.True(t, got.HasValidLap())
	})

	t.Run("absent fields default to zero", func(t *testing.T) {
		got, err := SessionRecord{ID: "s-2", SessionDate: "2026-03-02"}.Summary()
		require.NoError(t, err)
		assert.Zero(t, got.BestLapTime)
		assert.Zero(t, got.LapCount)
		assert.False(t, got.HasValidLap())
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), got.SessionDate)
	})

	t.Run("missing date is zero time", func(t *testing.T) {
		got, err := SessionRecord{ID: "s-3"}.Summary()
		require.NoError(t, err)
		assert.True(t, got.SessionDate.IsZero())
	})

	invalid := []SessionRecord{
		{ID: "neg-best", BestLapTimeMs: ptr(-5)},
		{ID: "nan-best", BestLapTimeMs: ptr(math.NaN())},
		{ID: "neg-laps", LapCount: ptr(-1)},
		{ID: "frac-laps", LapCount: ptr(2.5)},
		{ID: "bad-date", SessionDate: "yesterday"},
	}
	for _, rec := range invalid {
		t.Run(rec.ID, func(t *testing.T) {
			_, err := rec.Summary()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), rec.ID)
		})
	}
}

func TestLapRecordLap(t *testing.T) {
	t.Parallel()

	valid := false
	got, err := LapRecord{SessionID: "s-1", LapNumber: ptr(3), LapTimeMs: ptr(91000), Valid: &valid}.Lap()
	require.NoError(t, err)
	assert.Equal(t, Lap{SessionID: "s-1", LapNumber: 3, LapTime: 91 * time.Second, Valid: false}, got)

	got, err = LapRecord{SessionID: "s-1", LapNumber: ptr(4)}.Lap()
	require.NoError(t, err)
	assert.True(t, got.Valid, "absent valid flag means valid")
	assert.Zero(t, got.LapTime)

	_, err = LapRecord{SessionID: "s-1", LapNumber: ptr(5), LapTimeMs: ptr(-1)}.Lap()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = LapRecord{SessionID: "s-1", LapNumber: ptr(1.5)}.Lap()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessionSummaryValidate(t *testing.T) {
	assert.NoError(t, SessionSummary{ID: "ok", LapCount: 3, BestLapTime: time.Minute}.Validate())
	assert.NoError(t, SessionSummary{ID: "empty"}.Validate())
	assert.ErrorIs(t, SessionSummary{ID: "neg", LapCount: -1}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, SessionSummary{ID: "neg", BestLapTime: -time.Second}.Validate(), ErrInvalidInput)
}

func TestLapPoints(t *testing.T) {
	points := []TelemetryPoint{
		{SessionID: "a", LapNumber: 1, Position: Position{X: 1}},
		{SessionID: "a", LapNumber: 2, Position: Position{X: 2}},
		{SessionID: "b", LapNumber: 1, Position: Position{X: 3}},
		{SessionID: "a", LapNumber: 1, Position: Position{X: 4}},
	}
	assert.Equal(t, []Position{{X: 1}, {X: 4}}, LapPoints(points, "a", 1))

	none := LapPoints(points, "c", 1)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
