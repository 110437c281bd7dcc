package takeoff

import "maps"

// QuantitySource supplies the raw measured quantity of a color. The CAD host
// implements it by measuring the entities drawn in that color.
type QuantitySource interface {
	Quantity(color int) (float64, error)
}

// PlaceholderSource returns a synthetic quantity of 100 + 10*color. It stands
// in for the host when no drawing is available.
type PlaceholderSource struct{}

// Quantity implements QuantitySource.
func (PlaceholderSource) Quantity(color int) (float64, error) {
	return 100 + float64(color)*10, nil
}

// StaticSource serves quantities from a map. Colors missing from the map
// measure zero.
type StaticSource map[int]float64

// Quantity implements QuantitySource.
func (s StaticSource) Quantity(color int) (float64, error) {
	return s[color], nil
}

// Clone returns a copy of s.
func (s StaticSource) Clone() StaticSource {
	return maps.Clone(s)
}
