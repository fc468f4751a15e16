package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChainMesh(t *testing.T) {
	m := NewChainMesh(4)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 1, m.NeighborCount(0))
	assert.Equal(t, 2, m.NeighborCount(1))
	assert.Equal(t, 1, m.NeighborCount(3))
}

func TestNewChainMesh_SingleVertex(t *testing.T) {
	m := NewChainMesh(1)
	assert.Equal(t, 1, m.VertexCount())
	assert.Equal(t, 0, m.NeighborCount(0))
}

func TestNewGridMesh(t *testing.T) {
	m := NewGridMesh(2, 3)
	assert.Equal(t, 6, m.VertexCount())

	// corner has 2 neighbors, edge has 3, interior would have 4 but this
	// grid is only 2 rows so nothing is a 4-neighbor interior cell.
	assert.Equal(t, 2, m.NeighborCount(0))
	assert.Equal(t, 3, m.NeighborCount(1))
}
