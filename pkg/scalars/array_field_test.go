package scalars

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayField_IsLowerAndIsHigher(t *testing.T) {
	f := NewArrayField([]float64{3, 1, 2}, nil)

	assert.True(t, f.IsLower(1, 0))
	assert.False(t, f.IsLower(0, 1))
	assert.True(t, f.IsHigher(0, 1))
	assert.False(t, f.IsLower(0, 0))
}

func TestArrayField_TiesBrokenByVertexID(t *testing.T) {
	f := NewArrayField([]float64{5, 5, 5}, nil)
	assert.True(t, f.IsLower(0, 1))
	assert.False(t, f.IsLower(1, 0))
}

func TestArrayField_CustomComparator(t *testing.T) {
	reversed := func(a, b int) bool { return a > b }
	f := NewArrayField([]float64{5, 5}, reversed)
	assert.True(t, f.IsLower(1, 0))
}

func TestArrayField_SortedAndMirrorVertices(t *testing.T) {
	f := NewArrayField([]float64{3, 1, 2}, nil)
	sorted := f.SortedVertices()
	assert.Equal(t, []int{1, 2, 0}, sorted)

	mirror := f.MirrorVertices()
	for pos, v := range sorted {
		assert.Equal(t, pos, mirror[v])
	}
}

func TestArrayField_SortedVertices_IsTotalOrder(t *testing.T) {
	f := NewArrayField([]float64{4, 4, 1, 3, 2}, nil)
	sorted := append([]int(nil), f.SortedVertices()...)
	assert.True(t, sort.SliceIsSorted(sorted, func(i, j int) bool {
		return f.IsLower(sorted[i], sorted[j])
	}))
}

func TestArrayField_Negated_ReversesOrder(t *testing.T) {
	f := NewArrayField([]float64{1, 2, 3}, nil)
	neg := f.Negated()

	assert.Equal(t, f.IsLower(0, 1), neg.IsHigher(0, 1))
	assert.Equal(t, f.IsHigher(0, 1), neg.IsLower(0, 1))
}

func TestByVertexID(t *testing.T) {
	assert.True(t, ByVertexID(1, 2))
	assert.False(t, ByVertexID(2, 1))
}
