// Package colors is the color assignment catalog: which palette color stands
// for which material, how it is measured, what it costs and where it lands in
// the feeder workbook. No color is fixed; every assignment is user defined.
package colors

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/takeoff/internal/events"
	"github.com/mesh-intelligence/takeoff/pkg/types"
)

// Catalog holds color assignments keyed by color index.
type Catalog struct {
	mu          sync.RWMutex
	assignments map[int]*types.ColorAssignment
	materials   []string
	filters     map[string][]int
	logger      *zap.Logger
	hub         *events.Hub
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty catalog with the default material library.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		assignments: make(map[int]*types.ColorAssignment),
		materials:   slices.Clone(DefaultMaterials),
		filters:     make(map[string][]int),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hub = events.NewHub(c.logger)
	return c
}

// Subscribe returns a channel of color events. The Subject of each event is
// the color index, or types.AllColors.
func (c *Catalog) Subscribe(buffer int) (<-chan types.Event, func()) {
	return c.hub.Subscribe(buffer)
}

// Assign stores a copy of a under index, replacing any previous assignment.
// The stored ColorIndex is always index.
func (c *Catalog) Assign(index int, a types.ColorAssignment) error {
	if !types.ValidColorIndex(index) {
		return fmt.Errorf("%w: %d", types.ErrInvalidColor, index)
	}
	stored := a.Clone()
	stored.ColorIndex = index
	if err := types.ValidateStruct(stored); err != nil {
		return err
	}

	c.mu.Lock()
	c.assignments[index] = &stored
	c.mu.Unlock()

	c.logger.Debug("color assigned", zap.Int("color", index), zap.String("material", stored.MaterialName))
	c.notify(types.EventColorAssigned, index, stored.MaterialName)
	return nil
}

// AssignTrueColor assigns a under the palette index nearest to the RGB color
// and records the true color on the assignment. It returns the index used.
func (c *Catalog) AssignTrueColor(r, g, b int, a types.ColorAssignment) (int, error) {
	rgb := types.RGB{R: r, G: g, B: b}
	if err := types.ValidateStruct(rgb); err != nil {
		return 0, fmt.Errorf("%w: rgb(%d,%d,%d)", types.ErrInvalidColor, r, g, b)
	}
	index := ColorIndexFromRGB(r, g, b)
	a.TrueColor = &rgb
	if err := c.Assign(index, a); err != nil {
		return 0, err
	}
	return index, nil
}

// Remove deletes the assignment for index.
func (c *Catalog) Remove(index int) error {
	c.mu.Lock()
	if _, ok := c.assignments[index]; !ok {
		c.mu.Unlock()
		return notAssigned(index)
	}
	delete(c.assignments, index)
	c.mu.Unlock()

	c.notify(types.EventColorRemoved, index, "")
	return nil
}

// Clear removes every assignment.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.assignments = make(map[int]*types.ColorAssignment)
	c.mu.Unlock()
	c.hub.Publish(types.EventColorsCleared, types.AllColors, "")
}

// UpdateMaterial renames the material of an assigned color.
func (c *Catalog) UpdateMaterial(index int, material string) error {
	return c.update(index, func(a *types.ColorAssignment) error {
		a.MaterialName = material
		return nil
	})
}

// UpdateUnitCost sets the unit cost of an assigned color.
func (c *Catalog) UpdateUnitCost(index int, cost decimal.Decimal) error {
	return c.update(index, func(a *types.ColorAssignment) error {
		a.UnitCost = cost
		return nil
	})
}

// UpdateSpreadsheetMapping sets the workbook cell and optional formula of an
// assigned color.
func (c *Catalog) UpdateSpreadsheetMapping(index int, cell, formula string) error {
	return c.update(index, func(a *types.ColorAssignment) error {
		a.Cell = cell
		a.Formula = formula
		return nil
	})
}

// SetActive includes or excludes an assigned color from quantity runs.
func (c *Catalog) SetActive(index int, active bool) error {
	return c.update(index, func(a *types.ColorAssignment) error {
		a.Active = active
		return nil
	})
}

// AddMeasurementType appends m to the color's measurement types. It fails with
// ErrMeasurementExists when m is already present.
func (c *Catalog) AddMeasurementType(index int, m types.MeasurementType) error {
	if _, ok := types.ParseMeasurementType(string(m)); !ok {
		return fmt.Errorf("%w: measurement type %q", types.ErrInvalidData, m)
	}
	return c.update(index, func(a *types.ColorAssignment) error {
		if slices.Contains(a.MeasurementTypes, m) {
			return fmt.Errorf("%w: %s on color %d", types.ErrMeasurementExists, m, index)
		}
		a.MeasurementTypes = append(a.MeasurementTypes, m)
		return nil
	})
}

// RemoveMeasurementType drops m from the color's measurement types.
func (c *Catalog) RemoveMeasurementType(index int, m types.MeasurementType) error {
	return c.update(index, func(a *types.ColorAssignment) error {
		i := slices.Index(a.MeasurementTypes, m)
		if i < 0 {
			return fmt.Errorf("%w: measurement type %s on color %d", types.ErrNotFound, m, index)
		}
		a.MeasurementTypes = slices.Delete(a.MeasurementTypes, i, i+1)
		return nil
	})
}

// MeasurementTypes returns the measurement types of an assigned color, or
// nil when the color is unassigned.
func (c *Catalog) MeasurementTypes(index int) []types.MeasurementType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assignments[index]
	if !ok {
		return nil
	}
	return slices.Clone(a.MeasurementTypes)
}

// Get returns a copy of the assignment for index.
func (c *Catalog) Get(index int) (types.ColorAssignment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assignments[index]
	if !ok {
		return types.ColorAssignment{}, notAssigned(index)
	}
	return a.Clone(), nil
}

// All returns copies of every assignment ordered by color index.
func (c *Catalog) All() []types.ColorAssignment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.ColorAssignment, 0, len(c.assignments))
	for _, index := range c.sortedIndexes() {
		out = append(out, c.assignments[index].Clone())
	}
	return out
}

// AssignedColors returns the assigned color indexes in ascending order.
func (c *Catalog) AssignedColors() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedIndexes()
}

// IsAssigned reports whether index has an assignment.
func (c *Catalog) IsAssigned(index int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.assignments[index]
	return ok
}

// Len returns the number of assignments.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assignments)
}

// Restore replaces every assignment. All entries are validated first; on
// error nothing changes.
func (c *Catalog) Restore(assignments []types.ColorAssignment) error {
	next := make(map[int]*types.ColorAssignment, len(assignments))
	for i := range assignments {
		a := assignments[i].Clone()
		if err := types.ValidateStruct(a); err != nil {
			return fmt.Errorf("restore assignment %d: %w", i, err)
		}
		if _, dup := next[a.ColorIndex]; dup {
			return fmt.Errorf("restore assignment %d: %w: color %d", i, types.ErrDuplicate, a.ColorIndex)
		}
		next[a.ColorIndex] = &a
	}

	c.mu.Lock()
	c.assignments = next
	c.mu.Unlock()
	c.hub.Publish(types.EventColorAssigned, types.AllColors, fmt.Sprintf("%d assignments", len(next)))
	return nil
}

// SpreadsheetMappings returns cell -> color index for every assignment that
// names a cell.
func (c *Catalog) SpreadsheetMappings() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int)
	for index, a := range c.assignments {
		if a.Cell != "" {
			out[a.Cell] = index
		}
	}
	return out
}

// GenerateFormula returns the color's explicit formula, or
// =SUM(<cell>*<unit cost>) when none is set. Unassigned colors yield "".
func (c *Catalog) GenerateFormula(index int, _ types.MeasurementType) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assignments[index]
	if !ok {
		return ""
	}
	if a.Formula != "" {
		return a.Formula
	}
	return "=SUM(" + a.Cell + "*" + a.UnitCost.String() + ")"
}

// SetBoundaryFilter records which colors belong to a boundary for display.
func (c *Catalog) SetBoundaryFilter(boundary string, colors []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[boundary] = slices.Clone(colors)
}

// ColorsInBoundary returns the colors recorded by SetBoundaryFilter, or nil.
func (c *Catalog) ColorsInBoundary(boundary string) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.filters[boundary])
}

func (c *Catalog) update(index int, fn func(*types.ColorAssignment) error) error {
	c.mu.Lock()
	a, ok := c.assignments[index]
	if !ok {
		c.mu.Unlock()
		return notAssigned(index)
	}
	next := a.Clone()
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.assignments[index] = &next
	c.mu.Unlock()

	c.notify(types.EventColorUpdated, index, next.MaterialName)
	return nil
}

func (c *Catalog) notify(kind string, index int, message string) {
	c.hub.Publish(kind, strconv.Itoa(index), message)
}

// sortedIndexes must be called with c.mu held.
func (c *Catalog) sortedIndexes() []int {
	out := make([]int, 0, len(c.assignments))
	for index := range c.assignments {
		out = append(out, index)
	}
	slices.Sort(out)
	return out
}

func notAssigned(index int) error {
	return fmt.Errorf("%w: color %d is not assigned", types.ErrNotFound, index)
}
