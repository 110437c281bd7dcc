package plans

import (
	"maps"
	"slices"
)

// elevations is the AGS catalog: frame (A-frame or Hip), garage (Garage or
// No garage) and siding (Stucco, Brick or Hardi).
var elevations = map[string]string{
	"AGS": "A-Frame with Garage and Stucco",
	"AGB": "A-Frame with Garage and Brick",
	"AGH": "A-Frame with Garage and Hardi",
	"ANS": "A-Frame without Garage and Stucco",
	"ANB": "A-Frame without Garage and Brick",
	"ANH": "A-Frame without Garage and Hardi",
	"HGS": "Hip Roof with Garage and Stucco",
	"HGB": "Hip Roof with Garage and Brick",
	"HGH": "Hip Roof with Garage and Hardi",
	"HNS": "Hip Roof without Garage and Stucco",
	"HNB": "Hip Roof without Garage and Brick",
	"HNH": "Hip Roof without Garage and Hardi",
}

// Elevations returns every elevation code in ascending order.
func Elevations() []string {
	return slices.Sorted(maps.Keys(elevations))
}

// ElevationDescription returns the human readable name of code.
func ElevationDescription(code string) (string, bool) {
	d, ok := elevations[code]
	return d, ok
}

// ValidElevation reports whether code is in the catalog.
func ValidElevation(code string) bool {
	_, ok := elevations[code]
	return ok
}
