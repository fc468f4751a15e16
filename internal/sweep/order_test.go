package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/topomesh/mergetree/pkg/scalars"
)

func TestJoinOrder_SweepsAscending(t *testing.T) {
	f := scalars.NewArrayField([]float64{3, 1, 2}, nil)
	ord := JoinOrder(f)

	assert.True(t, ord.IsLowerSweep(1, 0))
	assert.Equal(t, 0, ord.SweepMaxVertex(f.SortedVertices()))
}

func TestSplitOrder_SweepsDescending(t *testing.T) {
	f := scalars.NewArrayField([]float64{3, 1, 2}, nil)
	ord := SplitOrder(f)

	assert.True(t, ord.IsLowerSweep(0, 1))
	assert.Equal(t, 1, ord.SweepMaxVertex(f.SortedVertices()))
}

func TestOrder_SweepMaxVertex_Empty(t *testing.T) {
	f := scalars.NewArrayField(nil, nil)
	assert.Equal(t, -1, JoinOrder(f).SweepMaxVertex(f.SortedVertices()))
	assert.Equal(t, -1, SplitOrder(f).SweepMaxVertex(f.SortedVertices()))
}
