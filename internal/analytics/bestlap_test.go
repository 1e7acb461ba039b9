package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

func TestBestLap(t *testing.T) {
	t.Parallel()

	lap := func(n int, ms int64, valid bool) telemetry.Lap {
		return telemetry.Lap{SessionID: "s", LapNumber: n, LapTime: time.Duration(ms) * time.Millisecond, Valid: valid}
	}

	tests := []struct {
		name      string
		laps      []telemetry.Lap
		wantLap   int
		wantFound bool
	}{
		{"empty", nil, 0, false},
		{"all zero", []telemetry.Lap{lap(1, 0, true), lap(2, 0, true)}, 0, false},
		{"negative ignored", []telemetry.Lap{lap(1, -5, true), lap(2, 91000, true)}, 2, true},
		{"minimum", []telemetry.Lap{lap(1, 92000, true), lap(2, 90000, true), lap(3, 91000, true)}, 2, true},
		{"tie keeps first", []telemetry.Lap{lap(1, 95000, true), lap(2, 90000, true), lap(3, 90000, true)}, 2, true},
		{"invalid flag ignored", []telemetry.Lap{lap(1, 92000, true), lap(2, 85000, false)}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestLap(tt.laps)
			assert.Equal(t, tt.wantFound, ok)
			if ok {
				assert.Equal(t, tt.wantLap, got.LapNumber)
			}
		})
	}
}

func TestBestValidLap(t *testing.T) {
	t.Parallel()

	laps := []telemetry.Lap{
		{LapNumber: 1, LapTime: 92 * time.Second, Valid: true},
		{LapNumber: 2, LapTime: 85 * time.Second, Valid: false},
		{LapNumber: 3, LapTime: 91 * time.Second, Valid: true},
	}
	got, ok := BestValidLap(laps)
	assert.True(t, ok)
	assert.Equal(t, 3, got.LapNumber)

	_, ok = BestValidLap(laps[1:2])
	assert.False(t, ok)
}

func TestSessionLaps(t *testing.T) {
	laps := []telemetry.Lap{
		{SessionID: "a", LapNumber: 1},
		{SessionID: "b", LapNumber: 1},
		{SessionID: "a", LapNumber: 2},
	}
	got := SessionLaps(laps, "a")
	assert.Equal(t, []telemetry.Lap{laps[0], laps[2]}, got)
	assert.NotNil(t, SessionLaps(laps, "zzz"))
}
