package types

import (
	"encoding/json"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// ColorSet is an unordered set of color indices. The zero value is an empty
// set ready to use. Callers must rely on membership only; Sorted gives a
// deterministic view for display and serialization.
type ColorSet struct {
	s mapset.Set[int]
}

// NewColorSet returns a set holding the given colors. Duplicates collapse.
func NewColorSet(colors ...int) ColorSet {
	return ColorSet{s: mapset.NewThreadUnsafeSet(colors...)}
}

func (c ColorSet) set() mapset.Set[int] {
	if c.s == nil {
		return mapset.NewThreadUnsafeSet[int]()
	}
	return c.s
}

// Len returns the number of distinct colors.
func (c ColorSet) Len() int {
	if c.s == nil {
		return 0
	}
	return c.s.Cardinality()
}

// IsEmpty reports whether the set holds no colors.
func (c ColorSet) IsEmpty() bool {
	return c.Len() == 0
}

// Contains reports whether color is a member.
func (c ColorSet) Contains(color int) bool {
	if c.s == nil {
		return false
	}
	return c.s.Contains(color)
}

// Add returns a new set with colors added; c is not modified.
func (c ColorSet) Add(colors ...int) ColorSet {
	out := c.set().Clone()
	for _, color := range colors {
		out.Add(color)
	}
	return ColorSet{s: out}
}

// Union returns c ∪ o.
func (c ColorSet) Union(o ColorSet) ColorSet {
	return ColorSet{s: c.set().Union(o.set())}
}

// SymmetricDifference returns the colors in exactly one of c and o.
func (c ColorSet) SymmetricDifference(o ColorSet) ColorSet {
	return ColorSet{s: c.set().SymmetricDifference(o.set())}
}

// Equal reports whether both sets hold the same colors.
func (c ColorSet) Equal(o ColorSet) bool {
	return c.set().Equal(o.set())
}

// Sorted returns the members in ascending order. Never nil.
func (c ColorSet) Sorted() []int {
	out := c.set().ToSlice()
	if out == nil {
		out = []int{}
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array.
func (c ColorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Sorted())
}

// UnmarshalJSON decodes a JSON array of color indices.
func (c *ColorSet) UnmarshalJSON(data []byte) error {
	var colors []int
	if err := json.Unmarshal(data, &colors); err != nil {
		return err
	}
	*c = NewColorSet(colors...)
	return nil
}
