// Package takeoff turns resolved color sets into priced quantity rows.
package takeoff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Pricer looks up color assignments and applies their measurement and cost
// rules. *colors.Catalog implements it.
type Pricer interface {
	Get(index int) (types.ColorAssignment, error)
	CalculateQuantity(index int, raw float64, m types.MeasurementType, pitchFactor float64) float64
	CalculateCost(index int, quantity float64) decimal.Decimal
}

// Resolver resolves boundary colors. *registry.Registry implements it.
type Resolver interface {
	Has(name string) bool
	ResolveColors(name, versionCode string) types.ColorSet
}

// QuantityRow is one priced line of a takeoff.
type QuantityRow struct {
	Color       int                   `json:"color"`
	Material    string                `json:"material"`
	Measurement types.MeasurementType `json:"measurement"`
	Quantity    float64               `json:"quantity"`
	UnitCost    decimal.Decimal       `json:"unit_cost"`
	Total       decimal.Decimal       `json:"total"`
	Cell        string                `json:"cell,omitempty"`
}

type options struct {
	pitchFactor     float64
	includeInactive bool
}

// Option adjusts a calculation.
type Option func(*options)

// WithPitchFactor sets the multiplier applied to pitched measurements.
// The default is 1.
func WithPitchFactor(f float64) Option {
	return func(o *options) { o.pitchFactor = f }
}

// WithInactive includes colors whose assignment is inactive.
func WithInactive() Option {
	return func(o *options) { o.includeInactive = true }
}

// Calculate returns one row per assigned color in colors, ordered by color.
// Unassigned colors are skipped, as are inactive ones unless WithInactive is
// given. Each quantity is adjusted for the assignment's primary measurement
// type.
func Calculate(p Pricer, src QuantitySource, colors types.ColorSet, opts ...Option) ([]QuantityRow, error) {
	o := options{pitchFactor: 1}
	for _, opt := range opts {
		opt(&o)
	}

	rows := make([]QuantityRow, 0, colors.Len())
	for _, color := range colors.Sorted() {
		a, err := p.Get(color)
		if err != nil {
			continue
		}
		if !a.Active && !o.includeInactive {
			continue
		}
		raw, err := src.Quantity(color)
		if err != nil {
			return nil, fmt.Errorf("quantity for color %d: %w", color, err)
		}
		m := a.PrimaryMeasurement()
		qty := p.CalculateQuantity(color, raw, m, o.pitchFactor)
		rows = append(rows, QuantityRow{
			Color:       color,
			Material:    a.MaterialName,
			Measurement: m,
			Quantity:    qty,
			UnitCost:    a.UnitCost,
			Total:       p.CalculateCost(color, qty),
			Cell:        a.Cell,
		})
	}
	return rows, nil
}

// BoundaryQuantities prices the colors visible in a boundary at a version
// code. A missing boundary fails with ErrNotFound; a short code yields no
// rows.
func BoundaryQuantities(r Resolver, name, versionCode string, p Pricer, src QuantitySource, opts ...Option) ([]QuantityRow, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: boundary %q", types.ErrNotFound, name)
	}
	return Calculate(p, src, r.ResolveColors(name, versionCode), opts...)
}

// Totals sums the row totals.
func Totals(rows []QuantityRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Total)
	}
	return total
}
