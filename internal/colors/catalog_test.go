package colors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func framing() types.ColorAssignment {
	return types.ColorAssignment{
		MaterialName:     "Framing",
		MeasurementTypes: []types.MeasurementType{types.MeasureLF},
		UnitCost:         decimal.RequireFromString("2.50"),
		Cell:             "B15",
		Active:           true,
	}
}

func TestAssign(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		wantErr error
	}{
		{name: "lowest index", index: 1},
		{name: "highest index", index: 255},
		{name: "zero", index: 0, wantErr: types.ErrInvalidColor},
		{name: "above palette", index: 256, wantErr: types.ErrInvalidColor},
		{name: "negative", index: -1, wantErr: types.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			err := c.Assign(tt.index, framing())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, c.Len())
				return
			}
			require.NoError(t, err)
			got, err := c.Get(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.index, got.ColorIndex, "stored index follows the key")
			assert.Equal(t, "Framing", got.MaterialName)
		})
	}
}

func TestAssignForcesIndexAndCopies(t *testing.T) {
	c := New()
	a := framing()
	a.ColorIndex = 99
	require.NoError(t, c.Assign(5, a))

	a.MeasurementTypes[0] = types.MeasureSF
	got, err := c.Get(5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.ColorIndex)
	assert.Equal(t, []types.MeasurementType{types.MeasureLF}, got.MeasurementTypes)
	assert.False(t, c.IsAssigned(99))
}

func TestAssignRejectsInvalidMeasurement(t *testing.T) {
	c := New()
	a := framing()
	a.MeasurementTypes = []types.MeasurementType{"YARDS"}
	assert.ErrorIs(t, c.Assign(5, a), types.ErrInvalidData)
	assert.False(t, c.IsAssigned(5))
}

func TestAssignTrueColor(t *testing.T) {
	tests := []struct {
		name      string
		r, g, b   int
		wantIndex int
		wantErr   error
	}{
		{name: "red primary", r: 255, wantIndex: 1},
		{name: "white primary", r: 255, g: 255, b: 255, wantIndex: 7},
		{name: "packed color", r: 0x20, g: 0x20, b: 0, wantIndex: 1 | 8},
		{name: "black packs to zero", wantErr: types.ErrInvalidColor},
		{name: "packed index above palette", r: 0xE0, g: 0xE0, b: 0xC0, wantErr: types.ErrInvalidColor},
		{name: "channel out of range", r: 300, wantErr: types.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			index, err := c.AssignTrueColor(tt.r, tt.g, tt.b, framing())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, c.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, index)

			got, err := c.Get(index)
			require.NoError(t, err)
			require.NotNil(t, got.TrueColor)
			assert.Equal(t, types.RGB{R: tt.r, G: tt.g, B: tt.b}, *got.TrueColor)
		})
	}
}

func TestColorIndexFromRGB(t *testing.T) {
	assert.Equal(t, 3, ColorIndexFromRGB(0, 255, 0))
	assert.Equal(t, 4, ColorIndexFromRGB(0, 255, 255))
	assert.Equal(t, 5, ColorIndexFromRGB(0, 0, 255))
	assert.Equal(t, 6, ColorIndexFromRGB(255, 0, 255))
	assert.Equal(t, 2, ColorIndexFromRGB(255, 255, 0))
	assert.Equal(t, 0x80, ColorIndexFromRGB(0, 0, 0x40))
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(1, framing()))
	require.NoError(t, c.Assign(2, framing()))

	require.NoError(t, c.Remove(1))
	assert.ErrorIs(t, c.Remove(1), types.ErrNotFound)
	assert.Equal(t, []int{2}, c.AssignedColors())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
}

func TestUpdates(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(10, framing()))

	require.NoError(t, c.UpdateMaterial(10, "Roofing"))
	require.NoError(t, c.UpdateUnitCost(10, decimal.RequireFromString("4.25")))
	require.NoError(t, c.UpdateSpreadsheetMapping(10, "C20", "=C20*2"))
	require.NoError(t, c.SetActive(10, false))

	got, err := c.Get(10)
	require.NoError(t, err)
	assert.Equal(t, "Roofing", got.MaterialName)
	assert.True(t, got.UnitCost.Equal(decimal.RequireFromString("4.25")))
	assert.Equal(t, "C20", got.Cell)
	assert.Equal(t, "=C20*2", got.Formula)
	assert.False(t, got.Active)

	assert.ErrorIs(t, c.UpdateMaterial(11, "x"), types.ErrNotFound)
	assert.ErrorIs(t, c.UpdateUnitCost(11, decimal.Zero), types.ErrNotFound)
	assert.ErrorIs(t, c.UpdateSpreadsheetMapping(11, "A1", ""), types.ErrNotFound)
}

func TestMeasurementTypes(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(10, framing()))

	require.NoError(t, c.AddMeasurementType(10, types.MeasureLFHip))
	assert.ErrorIs(t, c.AddMeasurementType(10, types.MeasureLFHip), types.ErrMeasurementExists)
	assert.ErrorIs(t, c.AddMeasurementType(10, "YARDS"), types.ErrInvalidData)
	assert.Equal(t, []types.MeasurementType{types.MeasureLF, types.MeasureLFHip}, c.MeasurementTypes(10))

	require.NoError(t, c.RemoveMeasurementType(10, types.MeasureLF))
	assert.ErrorIs(t, c.RemoveMeasurementType(10, types.MeasureLF), types.ErrNotFound)
	assert.Equal(t, []types.MeasurementType{types.MeasureLFHip}, c.MeasurementTypes(10))

	assert.Nil(t, c.MeasurementTypes(11))
	assert.ErrorIs(t, c.AddMeasurementType(11, types.MeasureSF), types.ErrNotFound)
}

func TestSpreadsheetMappingsAndFormula(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(10, framing()))
	noCell := framing()
	noCell.Cell = ""
	require.NoError(t, c.Assign(11, noCell))
	explicit := framing()
	explicit.Cell = "D4"
	explicit.Formula = "=D4*3"
	require.NoError(t, c.Assign(12, explicit))

	assert.Equal(t, map[string]int{"B15": 10, "D4": 12}, c.SpreadsheetMappings())
	assert.Equal(t, "=SUM(B15*2.5)", c.GenerateFormula(10, types.MeasureLF))
	assert.Equal(t, "=D4*3", c.GenerateFormula(12, types.MeasureLF))
	assert.Equal(t, "", c.GenerateFormula(99, types.MeasureLF))
}

func TestCalculateQuantity(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(10, framing()))

	tests := []struct {
		name    string
		index   int
		measure types.MeasurementType
		want    float64
	}{
		{name: "linear", index: 10, measure: types.MeasureLF, want: 100},
		{name: "square", index: 10, measure: types.MeasureSF, want: 100},
		{name: "each", index: 10, measure: types.MeasureEA, want: 100},
		{name: "custom", index: 10, measure: types.MeasureCustom, want: 100},
		{name: "linear on pitch", index: 10, measure: types.MeasureLFPitch, want: 125},
		{name: "square on pitch", index: 10, measure: types.MeasureSFPitch, want: 125},
		{name: "hip", index: 10, measure: types.MeasureLFHip, want: 141.4213562},
		{name: "unassigned color", index: 11, measure: types.MeasureLFHip, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CalculateQuantity(tt.index, 100, tt.measure, 1.25)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateCost(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(10, framing()))

	assert.Equal(t, "25", c.CalculateCost(10, 10).String())
	assert.True(t, c.CalculateCost(11, 10).IsZero())
}

func TestBoundaryFilter(t *testing.T) {
	c := New()
	c.SetBoundaryFilter("Garage", []int{3, 4})
	assert.Equal(t, []int{3, 4}, c.ColorsInBoundary("Garage"))
	assert.Nil(t, c.ColorsInBoundary("Porch"))
}

func TestRestore(t *testing.T) {
	c := New()
	require.NoError(t, c.Assign(1, framing()))

	a := framing()
	a.ColorIndex = 7
	err := c.Restore([]types.ColorAssignment{a, a})
	assert.ErrorIs(t, err, types.ErrDuplicate)
	assert.Equal(t, []int{1}, c.AssignedColors(), "unchanged after failed restore")

	require.NoError(t, c.Restore([]types.ColorAssignment{a}))
	assert.Equal(t, []int{7}, c.AssignedColors())
}

func TestColorEvents(t *testing.T) {
	c := New()
	ch, cancel := c.Subscribe(8)
	defer cancel()

	require.NoError(t, c.Assign(10, framing()))
	require.NoError(t, c.UpdateMaterial(10, "Trim"))
	require.NoError(t, c.Remove(10))
	c.Clear()

	want := []struct{ kind, subject string }{
		{types.EventColorAssigned, "10"},
		{types.EventColorUpdated, "10"},
		{types.EventColorRemoved, "10"},
		{types.EventColorsCleared, types.AllColors},
	}
	for _, w := range want {
		ev := <-ch
		assert.Equal(t, w.kind, ev.Kind)
		assert.Equal(t, w.subject, ev.Subject)
	}
}
