package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	r := mainHouse(t)
	require.NoError(t, r.Create("Garage", "Plan A"))
	require.NoError(t, r.SetActive("Garage", false))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Garage", snap[0].Name)

	other := New()
	require.NoError(t, other.Restore(snap))
	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{1, 2, 10, 20, 30}, other.ResolveColors("MainHouse", "AGS").Sorted())
}

func TestRestoreRejectsBadInputAtomically(t *testing.T) {
	r := mainHouse(t)

	err := r.Restore([]types.Boundary{{Name: "A"}, {Name: "A"}})
	assert.ErrorIs(t, err, types.ErrDuplicate)

	err = r.Restore([]types.Boundary{{Name: ""}})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	assert.Equal(t, []string{"MainHouse"}, r.ListNames(), "state unchanged after failed restore")
}

func TestRestoreStrictKeepsUnknownComponent(t *testing.T) {
	r := New(WithStrictVersionCodes(true))
	b := types.NewBoundary("X", "")
	b.BaseColors = []int{2}
	b.Overrides['Q'] = []int{1}

	require.NoError(t, r.Restore([]types.Boundary{*b}))
	got, err := r.Get("X")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.Overrides['Q'])

	assert.ErrorIs(t, r.AssignOverride("X", 'Z', []int{4}), types.ErrInvalidComponent)
	assert.Equal(t, []int{2}, r.ResolveColors("X", "AGS").Sorted())
	assert.True(t, r.ResolveColors("X", "QGS").IsEmpty())
	require.NoError(t, r.Delete("X"))
}

func TestRestoreToleratesNilMaps(t *testing.T) {
	r := New()
	require.NoError(t, r.Restore([]types.Boundary{{Name: "Bare", Active: true}}))
	require.NoError(t, r.AssignOverride("Bare", 'A', []int{3}))
	assert.Equal(t, []int{3}, r.ResolveColors("Bare", "AGS").Sorted())
}
