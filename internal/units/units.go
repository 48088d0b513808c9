// Package units provides shared length constants and conversions for the
// geometry and navigation packages.
//
// All geometry is expressed in millimetres internally. Convert at the
// edges (config files, CLI flags, plots) rather than mixing units inside
// the navigation loop.
package units

// Length units, expressed in the internal base unit (millimetres).
const (
	Micrometer = 1e-3
	Millimeter = 1.0
	Centimeter = 10.0
	Meter      = 1000.0
)

// OnSurfaceTolerance is the default distance below which a trajectory is
// considered to lie on a surface (0.1 micron).
const OnSurfaceTolerance = 0.1 * Micrometer

// Unit name constants for config files and CLI flags.
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ValidUnits contains all valid length unit names.
var ValidUnits = []string{MM, CM, M}

// IsValid checks if the given unit name is in the list of valid units.
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

// ConvertLength converts a length from internal millimetres to the target units.
func ConvertLength(lengthMM float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return lengthMM / Centimeter
	case M:
		return lengthMM / Meter
	case MM:
		return lengthMM // no conversion needed
	default:
		return lengthMM // default to mm if unknown unit
	}
}
