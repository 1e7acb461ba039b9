// Package units provides shared constants, validation and conversion for the
// distance and lap-time units used in reports.
package units

// Distance unit constants
const (
	KM = "km"
	MI = "mi"
)

// ValidDistanceUnits contains all valid distance unit values
var ValidDistanceUnits = []string{KM, MI}

const kmPerMile = 1.609344

// IsValid checks if the given unit is a valid distance unit
func IsValid(unit string) bool {
	for _, validUnit := range ValidDistanceUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "km, mi"
}

// ConvertDistance converts a distance from kilometres to the target units.
// Analytics always work in kilometres.
func ConvertDistance(km float64, targetUnits string) float64 {
	switch targetUnits {
	case MI:
		return km / kmPerMile
	default:
		return km
	}
}
