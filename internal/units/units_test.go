package units

import (
	"math"
	"testing"
	"time"
)

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name     string
		km       float64
		units    string
		expected float64
	}{
		{"km passthrough", 40, KM, 40},
		{"km to miles", 1.609344, MI, 1},
		{"one lap of 4km to miles", 4, MI, 2.48548},
		{"unknown units default to km", 12, "furlong", 12},
		{"zero", 0, MI, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.km, tt.units)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.km, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		unit     string
		expected bool
	}{
		{KM, true},
		{MI, true},
		{"", false},
		{"KM", false},
		{"mph", false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.unit); got != tt.expected {
			t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
		}
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "km, mi" {
		t.Errorf("GetValidUnitsString() = %s, want %s", got, "km, mi")
	}
}

func TestMillisecondsRoundTrip(t *testing.T) {
	d := 90500 * time.Millisecond
	if got := Milliseconds(d); got != 90500 {
		t.Errorf("Milliseconds(%v) = %v, want 90500", d, got)
	}
	if got := FromMilliseconds(90500.25); got != 90500250*time.Microsecond {
		t.Errorf("FromMilliseconds(90500.25) = %v", got)
	}
}

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{89 * time.Second, "1:29.000"},
		{90500 * time.Millisecond, "1:30.500"},
		{59*time.Second + 999*time.Millisecond, "0:59.999"},
		{2*time.Minute + 3*time.Second + 45*time.Millisecond, "2:03.045"},
		{0, "--:--.---"},
		{-time.Second, "--:--.---"},
	}
	for _, tt := range tests {
		if got := FormatLapTime(tt.in); got != tt.want {
			t.Errorf("FormatLapTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
