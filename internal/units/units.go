// Package units provides shared constants and validation for the length
// units tracker coordinates are recorded in.
package units

import "strings"

// Unit constants
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// metres per unit
var scale = map[string]float64{
	MM: 0.001,
	CM: 0.01,
	M:  1,
}

// ConvertSpeed converts a speed measured in from-units per second into
// to-units per second. Unknown units leave the value unchanged.
func ConvertSpeed(speed float64, from, to string) float64 {
	fs, ok := scale[from]
	if !ok {
		return speed
	}
	ts, ok := scale[to]
	if !ok {
		return speed
	}
	return speed * fs / ts
}

// SpeedLabel is the axis label for speeds in the given length unit, e.g. "cm/s".
func SpeedLabel(unit string) string {
	return unit + "/s"
}
