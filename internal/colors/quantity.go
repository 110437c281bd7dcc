package colors

import (
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// HipFactor converts plan length to true length along a 45 degree hip.
const HipFactor = 1.414213562

// CalculateQuantity adjusts a raw host measurement for the measurement type.
// Pitched types scale by pitchFactor and LF_HIP by HipFactor. Unassigned
// colors return raw unchanged.
func (c *Catalog) CalculateQuantity(index int, raw float64, m types.MeasurementType, pitchFactor float64) float64 {
	if !c.IsAssigned(index) {
		return raw
	}
	switch m {
	case types.MeasureLFPitch, types.MeasureSFPitch:
		return raw * pitchFactor
	case types.MeasureLFHip:
		return raw * HipFactor
	default:
		return raw
	}
}

// CalculateCost prices quantity at the color's unit cost. Unassigned colors
// cost zero.
func (c *Catalog) CalculateCost(index int, quantity float64) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assignments[index]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(quantity).Mul(a.UnitCost)
}
