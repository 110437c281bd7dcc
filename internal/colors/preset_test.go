package colors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residential.csv")

	src := New()
	require.NoError(t, src.Assign(10, framing()))
	hip := types.ColorAssignment{
		MaterialName:     "Hip Rafter, 2x8",
		MeasurementTypes: []types.MeasurementType{types.MeasureLFHip, types.MeasureLF},
		UnitCost:         decimal.RequireFromString("3.75"),
		Cell:             "C7",
		Formula:          "=C7*1.1",
		Description:      "rafters",
	}
	require.NoError(t, src.Assign(42, hip))
	require.NoError(t, src.SavePreset(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data),
		"ColorIndex,MaterialName,UnitCost,ExcelCell,ExcelFormula,MeasurementType,Description\n"))

	dst := New()
	require.NoError(t, dst.Assign(99, framing()))
	require.NoError(t, dst.LoadPreset(path))

	assert.Equal(t, []int{10, 42}, dst.AssignedColors(), "load replaces existing assignments")
	got, err := dst.Get(42)
	require.NoError(t, err)
	assert.Equal(t, "Hip Rafter, 2x8", got.MaterialName)
	assert.True(t, got.UnitCost.Equal(hip.UnitCost))
	assert.Equal(t, "C7", got.Cell)
	assert.Equal(t, "=C7*1.1", got.Formula)
	assert.Equal(t, "rafters", got.Description)
	assert.Equal(t, []types.MeasurementType{types.MeasureLFHip}, got.MeasurementTypes, "first measurement type only")
	assert.True(t, got.Active)
}

func TestLoadPresetUnknownMeasurementFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.csv")
	content := "ColorIndex,MaterialName,UnitCost,ExcelCell,ExcelFormula,MeasurementType,Description\n" +
		"5,Trim,1.5,B2,,FURLONGS,\n" +
		"6,Doors,,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c := New()
	require.NoError(t, c.LoadPreset(path))

	trim, err := c.Get(5)
	require.NoError(t, err)
	assert.Equal(t, []types.MeasurementType{types.MeasureLF}, trim.MeasurementTypes)

	doors, err := c.Get(6)
	require.NoError(t, err)
	assert.True(t, doors.UnitCost.IsZero())
}

func TestLoadPresetRejectsBadRows(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr error
	}{
		{name: "non numeric index", row: "x,Trim,1,,,,", wantErr: types.ErrInvalidColor},
		{name: "index out of range", row: "300,Trim,1,,,,", wantErr: types.ErrInvalidColor},
		{name: "bad cost", row: "5,Trim,cheap,,,,", wantErr: types.ErrInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.csv")
			content := strings.Join(presetHeader, ",") + "\n" + tt.row + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			c := New()
			require.NoError(t, c.Assign(1, framing()))
			assert.ErrorIs(t, c.LoadPreset(path), tt.wantErr)
			assert.Equal(t, []int{1}, c.AssignedColors())
		})
	}
}

func TestLoadPresetMissingFile(t *testing.T) {
	c := New()
	assert.Error(t, c.LoadPreset(filepath.Join(t.TempDir(), "missing.csv")))
}

func TestMaterialLibrary(t *testing.T) {
	c := New()
	assert.Len(t, c.Materials(), 17)
	assert.Contains(t, c.Materials(), "Insulation")

	path := filepath.Join(t.TempDir(), "materials.txt")
	require.NoError(t, os.WriteFile(path, []byte("Stone Veneer\n\nCedar Shake\r\n"), 0o644))
	require.NoError(t, c.ImportMaterialLibrary(path))
	assert.Equal(t, []string{"Stone Veneer", "Cedar Shake"}, c.Materials())

	assert.Error(t, c.ImportMaterialLibrary(filepath.Join(t.TempDir(), "none.txt")))
	assert.Equal(t, []string{"Stone Veneer", "Cedar Shake"}, c.Materials(), "failed import keeps the library")
}
