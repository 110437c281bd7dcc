package types

import "slices"

// MaxNameLength bounds boundary names; names must be shorter than this.
const MaxNameLength = 256

// Point3D is a drawing coordinate supplied by the CAD host.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Extent is an axis-aligned box in drawing space.
type Extent struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
}

// Contains reports whether p lies inside e, edges included.
func (e Extent) Contains(p Point3D) bool {
	return p.X >= e.Min.X && p.X <= e.Max.X &&
		p.Y >= e.Min.Y && p.Y <= e.Max.Y &&
		p.Z >= e.Min.Z && p.Z <= e.Max.Z
}

// Boundary is a named region of a construction plan carrying a base palette
// and override palettes keyed by version-component character. The name is
// the identity and never changes after creation.
type Boundary struct {
	Name           string                  `json:"name"`
	AttachmentPlan string                  `json:"attachment_plan"`
	BaseColors     []int                   `json:"base_colors"`
	Overrides      map[ComponentChar][]int `json:"overrides"`
	Active         bool                    `json:"active"`
	Extent         *Extent                 `json:"extent,omitempty"`
}

// ValidBoundaryName reports whether name is non-empty and shorter than
// MaxNameLength.
func ValidBoundaryName(name string) bool {
	return name != "" && len(name) < MaxNameLength
}

// NewBoundary returns an active boundary with empty palettes.
func NewBoundary(name, plan string) *Boundary {
	return &Boundary{
		Name:           name,
		AttachmentPlan: plan,
		BaseColors:     []int{},
		Overrides:      make(map[ComponentChar][]int),
		Active:         true,
	}
}

// Clone returns a deep copy so callers never share palette slices with the
// registry.
func (b *Boundary) Clone() Boundary {
	out := Boundary{
		Name:           b.Name,
		AttachmentPlan: b.AttachmentPlan,
		BaseColors:     slices.Clone(b.BaseColors),
		Overrides:      make(map[ComponentChar][]int, len(b.Overrides)),
		Active:         b.Active,
	}
	if out.BaseColors == nil {
		out.BaseColors = []int{}
	}
	for k, v := range b.Overrides {
		out.Overrides[k] = slices.Clone(v)
	}
	if b.Extent != nil {
		ext := *b.Extent
		out.Extent = &ext
	}
	return out
}

// Resolve returns base ∪ override(code[0]) ∪ override(code[1]) ∪
// override(code[2]). A code shorter than three characters resolves to the
// empty set. Characters with no override contribute nothing.
func (b *Boundary) Resolve(code string) ColorSet {
	chars, ok := PositionalChars(code)
	if !ok {
		return ColorSet{}
	}
	colors := NewColorSet(b.BaseColors...)
	for _, ch := range chars {
		if override, found := b.Overrides[ch]; found {
			colors = colors.Add(override...)
		}
	}
	return colors
}
