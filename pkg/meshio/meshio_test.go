package meshio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChain = `VERTICES 4
0.0
1.0
2.0
1.5
EDGES 3
0 1
1 2
2 3
`

func TestDecode_ValidChain(t *testing.T) {
	ds, err := Decode(strings.NewReader(sampleChain))
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Mesh.VertexCount())
	assert.Equal(t, 4, ds.Field.Len())
	assert.Equal(t, 1, ds.Mesh.NeighborCount(0))
	assert.Equal(t, 2, ds.Mesh.NeighborCount(1))
}

func TestDecode_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# a comment\n\nVERTICES 2\n# another\n0.0\n1.0\n\nEDGES 1\n0 1\n"
	ds, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Mesh.VertexCount())
}

func TestDecode_EmptyFile(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.Error(t, err)
}

func TestDecode_TruncatedVertexList(t *testing.T) {
	_, err := Decode(strings.NewReader("VERTICES 3\n0.0\n1.0\n"))
	assert.Error(t, err)
}

func TestDecode_EdgeOutOfRange(t *testing.T) {
	input := "VERTICES 2\n0.0\n1.0\nEDGES 1\n0 5\n"
	_, err := Decode(strings.NewReader(input))
	assert.Error(t, err)
}

func TestDecode_MalformedHeader(t *testing.T) {
	_, err := Decode(strings.NewReader("VERTS 2\n0.0\n1.0\n"))
	assert.Error(t, err)
}
