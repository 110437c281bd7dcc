package types

import (
	"slices"

	"github.com/shopspring/decimal"
)

// MeasurementType says how a color's drawn geometry is measured.
type MeasurementType string

// Measurement types.
const (
	MeasureLF      MeasurementType = "LF"       // linear feet
	MeasureSF      MeasurementType = "SF"       // square feet
	MeasureEA      MeasurementType = "EA"       // each / count
	MeasureLFPitch MeasurementType = "LF_PITCH" // linear feet on pitch
	MeasureSFPitch MeasurementType = "SF_PITCH" // square feet on pitch
	MeasureLFHip   MeasurementType = "LF_HIP"   // linear feet along a hip
	MeasureCustom  MeasurementType = "CUSTOM"
)

// MeasurementTypes lists every measurement type.
var MeasurementTypes = []MeasurementType{
	MeasureLF, MeasureSF, MeasureEA, MeasureLFPitch, MeasureSFPitch, MeasureLFHip, MeasureCustom,
}

// ParseMeasurementType returns the matching type, or LF and false when s is
// not recognized.
func ParseMeasurementType(s string) (MeasurementType, bool) {
	for _, m := range MeasurementTypes {
		if string(m) == s {
			return m, true
		}
	}
	return MeasureLF, false
}

// Color index bounds of the CAD color palette.
const (
	MinColorIndex = 1
	MaxColorIndex = 255
)

// ValidColorIndex reports whether index is inside the palette.
func ValidColorIndex(index int) bool {
	return index >= MinColorIndex && index <= MaxColorIndex
}

// RGB is a true color.
type RGB struct {
	R int `json:"r" validate:"min=0,max=255"`
	G int `json:"g" validate:"min=0,max=255"`
	B int `json:"b" validate:"min=0,max=255"`
}

// ColorAssignment maps a palette color to a material and how it is measured,
// priced and exported.
type ColorAssignment struct {
	ColorIndex       int               `json:"color_index" validate:"min=1,max=255"`
	MaterialName     string            `json:"material_name" validate:"max=255"`
	MeasurementTypes []MeasurementType `json:"measurement_types" validate:"dive,oneof=LF SF EA LF_PITCH SF_PITCH LF_HIP CUSTOM"`
	UnitCost         decimal.Decimal   `json:"unit_cost"`
	Cell             string            `json:"cell,omitempty"`
	Formula          string            `json:"formula,omitempty"`
	Description      string            `json:"description,omitempty"`
	Active           bool              `json:"active"`
	TrueColor        *RGB              `json:"true_color,omitempty" validate:"omitempty"`
}

// PrimaryMeasurement returns the first measurement type, LF when none is set.
func (a *ColorAssignment) PrimaryMeasurement() MeasurementType {
	if len(a.MeasurementTypes) == 0 {
		return MeasureLF
	}
	return a.MeasurementTypes[0]
}

// Clone returns a deep copy of a.
func (a *ColorAssignment) Clone() ColorAssignment {
	out := *a
	out.MeasurementTypes = slices.Clone(a.MeasurementTypes)
	if a.TrueColor != nil {
		rgb := *a.TrueColor
		out.TrueColor = &rgb
	}
	return out
}
