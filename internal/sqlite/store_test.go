package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func attached(t *testing.T, config types.Config) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func sampleBoundaries() []types.Boundary {
	kitchen := types.NewBoundary("Kitchen", "Plan-1")
	kitchen.BaseColors = []int{1, 2}
	kitchen.Overrides['A'] = []int{10, 11}
	kitchen.Overrides['G'] = []int{20}
	kitchen.Extent = &types.Extent{
		Min: types.Point3D{X: 0, Y: 0, Z: 0},
		Max: types.Point3D{X: 120.5, Y: 80, Z: 9},
	}

	garage := types.NewBoundary("Garage", "Plan-1")
	garage.BaseColors = []int{3}
	garage.Overrides['H'] = []int{40}
	garage.Active = false

	// Loads come back ordered by name.
	return []types.Boundary{*garage, *kitchen}
}

func reload(t *testing.T, b *Backend, dir string) *Backend {
	t.Helper()
	require.NoError(t, b.Detach())
	return attached(t, testConfig(dir))
}

func TestBoundariesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, testConfig(dir))
	want := sampleBoundaries()

	require.NoError(t, b.SaveBoundaries(want))

	got, err := b.LoadBoundaries()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadBoundaries mismatch (-want +got):\n%s", diff)
	}

	b = reload(t, b, dir)
	got, err = b.LoadBoundaries()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadBoundaries after reattach mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundariesRoundTripNonASCIIOverride(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, testConfig(dir))
	house := types.NewBoundary("MainHouse", "Plan-1")
	house.BaseColors = []int{1}
	house.Overrides[types.ComponentChar(0xE9)] = []int{77}
	want := []types.Boundary{*house}

	require.NoError(t, b.SaveBoundaries(want))

	b = reload(t, b, dir)
	got, err := b.LoadBoundaries()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadBoundaries after reattach mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveBoundariesReplaces(t *testing.T) {
	b := attached(t, testConfig(t.TempDir()))
	require.NoError(t, b.SaveBoundaries(sampleBoundaries()))

	only := types.NewBoundary("Porch", "Plan-2")
	only.BaseColors = []int{7}
	require.NoError(t, b.SaveBoundaries([]types.Boundary{*only}))

	got, err := b.LoadBoundaries()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Porch", got[0].Name)

	names, err := b.BoundariesUsingColor(10)
	require.NoError(t, err)
	assert.Empty(t, names, "colors of replaced boundaries must be gone")
}

func TestBoundariesUsingColor(t *testing.T) {
	b := attached(t, testConfig(t.TempDir()))

	first := types.NewBoundary("A-Wing", "P")
	first.BaseColors = []int{1, 2}
	second := types.NewBoundary("B-Wing", "P")
	second.Overrides['A'] = []int{2}
	second.Overrides['G'] = []int{2, 5}
	third := types.NewBoundary("C-Wing", "P")
	third.BaseColors = []int{3}
	require.NoError(t, b.SaveBoundaries([]types.Boundary{*third, *second, *first}))

	names, err := b.BoundariesUsingColor(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-Wing", "B-Wing"}, names)

	names, err = b.BoundariesUsingColor(99)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPlansRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, testConfig(dir))
	want := []types.Plan{
		{
			Name:        "First Floor",
			Path:        "/plans/first.dwg",
			Elevation:   "AGS",
			Loaded:      true,
			Scale:       1,
			Rotation:    90,
			InsertPoint: types.Point3D{X: 10, Y: 20, Z: 0},
			Properties:  map[string]string{"layer": "A-FLOR"},
			HostRef:     "0190f2a4-0000-7000-8000-000000000001",
		},
		{
			Name:      "Roof",
			Path:      "/plans/roof.dwg",
			Elevation: "CGH",
			Scale:     0.5,
			HostRef:   "0190f2a4-0000-7000-8000-000000000002",
		},
	}

	require.NoError(t, b.SavePlans(want))
	b = reload(t, b, dir)

	got, err := b.LoadPlans()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadPlans mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, testConfig(dir))
	want := []types.ColorAssignment{
		{
			ColorIndex:       1,
			MaterialName:     "Drywall",
			MeasurementTypes: []types.MeasurementType{types.MeasureSF},
			UnitCost:         decimal.RequireFromString("2.50"),
			Cell:             "B4",
			Formula:          "=SUM(B4*2.5)",
			Active:           true,
		},
		{
			ColorIndex:       140,
			MaterialName:     "Roofing",
			MeasurementTypes: []types.MeasurementType{types.MeasureLFHip, types.MeasureEA},
			UnitCost:         decimal.RequireFromString("0.125"),
			Description:      "true color",
			TrueColor:        &types.RGB{R: 128, G: 64, B: 0},
		},
	}

	require.NoError(t, b.SaveAssignments(want))
	b = reload(t, b, dir)

	got, err := b.LoadAssignments()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadAssignments mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	lines := strings.Join([]string{
		`{"name":"Kitchen","attachment_plan":"P1","base_colors":[1,2],"overrides":{"A":[10]},"active":true,"color":"ignored"}`,
		`garbage`,
		`{"name":5}`,
		`{"name":"","attachment_plan":"P1"}`,
		`{"name":"Den","attachment_plan":"P1","base_colors":[4],"active":true}`,
		`{"name":"Kitchen","attachment_plan":"P2","base_colors":[3],"active":false}`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, boundariesJSONL), []byte(lines+"\n"), 0o644))

	b := attached(t, testConfig(dir))
	got, err := b.LoadBoundaries()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Den", got[0].Name)
	assert.Equal(t, []int{4}, got[0].BaseColors)

	// The later Kitchen record wins.
	assert.Equal(t, "Kitchen", got[1].Name)
	assert.Equal(t, "P2", got[1].AttachmentPlan)
	assert.Equal(t, []int{3}, got[1].BaseColors)
	assert.Empty(t, got[1].Overrides)
	assert.False(t, got[1].Active)
}

func TestSyncImmediateWritesOnSave(t *testing.T) {
	dir := t.TempDir()
	b := attached(t, testConfig(dir))

	require.NoError(t, b.SaveBoundaries(sampleBoundaries()))

	data, err := os.ReadFile(filepath.Join(dir, boundariesJSONL))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestSyncOnCloseDefersWrites(t *testing.T) {
	dir := t.TempDir()
	config := testConfig(dir)
	config.SyncStrategy = types.SyncOnClose
	b := attached(t, config)

	require.NoError(t, b.SaveBoundaries(sampleBoundaries()))
	path := filepath.Join(dir, boundariesJSONL)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data, "nothing written before Detach")

	// Queries see the saved state immediately.
	got, err := b.LoadBoundaries()
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, b.Detach())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
