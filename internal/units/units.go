// Package units provides shared constants and validation for depth units
package units

import "fmt"

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
	return "mm, cm, m"
}

// MetersPer returns how many meters one step of unit represents.
func MetersPer(unit string) (float64, error) {
	switch unit {
	case MM:
		return 0.001, nil
	case CM:
		return 0.01, nil
	case M:
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown depth unit %q (valid: %s)", unit, GetValidUnitsString())
	}
}

// ScaleFactor returns the multiplier that converts a depth expressed in from
// into the same depth expressed in to.
func ScaleFactor(from, to string) (float64, error) {
	f, err := MetersPer(from)
	if err != nil {
		return 0, err
	}
	t, err := MetersPer(to)
	if err != nil {
		return 0, err
	}
	return f / t, nil
}

// ConvertDepth converts a depth value between units.
func ConvertDepth(depth float64, from, to string) (float64, error) {
	k, err := ScaleFactor(from, to)
	if err != nil {
		return 0, err
	}
	return depth * k, nil
}
