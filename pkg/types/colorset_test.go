package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorSetZeroValue(t *testing.T) {
	var c ColorSet
	assert.Equal(t, 0, c.Len())
	assert.True(t, c.IsEmpty())
	assert.False(t, c.Contains(1))
	assert.Equal(t, []int{}, c.Sorted())
	assert.True(t, c.Equal(NewColorSet()))
}

func TestColorSetOperations(t *testing.T) {
	a := NewColorSet(1, 2, 3, 3)
	b := NewColorSet(3, 4)

	assert.Equal(t, 3, a.Len(), "duplicates collapse")
	assert.Equal(t, []int{1, 2, 3, 4}, a.Union(b).Sorted())
	assert.Equal(t, []int{1, 2, 4}, a.SymmetricDifference(b).Sorted())
	assert.Equal(t, a.SymmetricDifference(b).Sorted(), b.SymmetricDifference(a).Sorted())
	assert.True(t, a.SymmetricDifference(a).IsEmpty())
}

func TestColorSetAddDoesNotMutate(t *testing.T) {
	a := NewColorSet(1)
	b := a.Add(2, 3)

	assert.Equal(t, []int{1}, a.Sorted())
	assert.Equal(t, []int{1, 2, 3}, b.Sorted())

	var zero ColorSet
	assert.Equal(t, []int{7}, zero.Add(7).Sorted())
}

func TestColorSetJSON(t *testing.T) {
	data, err := json.Marshal(NewColorSet(30, 1, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,10,30]`, string(data))

	var back ColorSet
	require.NoError(t, json.Unmarshal([]byte(`[5,5,2]`), &back))
	assert.Equal(t, []int{2, 5}, back.Sorted())

	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &back))
}
