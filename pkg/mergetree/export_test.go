package mergetree

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topomesh/mergetree/pkg/compression"
	"github.com/topomesh/mergetree/pkg/mesh"
	"github.com/topomesh/mergetree/pkg/scalars"
)

func TestTree_WriteJSON_CompactShape(t *testing.T) {
	m := mesh.NewChainMesh(4)
	f := scalars.NewArrayField([]float64{0, 1, 2, 3}, nil)
	b := NewBuilder(m, f)
	tr, err := b.Build(context.Background(), Params{Type: Join, ChunkSize: 4})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.WriteJSON(&buf, false))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "join", doc["type"])
	nodes, ok := doc["nodes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, nodes, tr.NumNodes())
	roots, ok := doc["roots"].([]interface{})
	require.True(t, ok)
	assert.Len(t, roots, 1)
}

func TestTree_WriteJSON_PrettyIsIndented(t *testing.T) {
	m := mesh.NewChainMesh(3)
	f := scalars.NewArrayField([]float64{0, 1, 2}, nil)
	b := NewBuilder(m, f)
	tr, err := b.Build(context.Background(), Params{Type: Join, ChunkSize: 4})
	require.NoError(t, err)

	var compact, pretty bytes.Buffer
	require.NoError(t, tr.WriteJSON(&compact, false))
	require.NoError(t, tr.WriteJSON(&pretty, true))

	assert.Greater(t, pretty.Len(), compact.Len())
}

func TestTree_WriteCompressed_RoundTrips(t *testing.T) {
	m := mesh.NewChainMesh(5)
	f := scalars.NewArrayField([]float64{3, 1, 2, 4, 5}, nil)
	b := NewBuilder(m, f)
	tr, err := b.Build(context.Background(), Params{Type: Join, ChunkSize: 4})
	require.NoError(t, err)

	for _, typ := range []compression.Type{compression.TypeGzip, compression.TypeZstd} {
		var buf bytes.Buffer
		require.NoError(t, tr.WriteCompressed(&buf, typ, compression.LevelDefault))

		comp, err := compression.New(typ, compression.LevelDefault)
		require.NoError(t, err)
		raw, err := comp.Decompress(buf.Bytes())
		require.NoError(t, err)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "join", doc["type"])
	}
}

func TestTreeType_String(t *testing.T) {
	assert.Equal(t, "join", Join.String())
	assert.Equal(t, "split", Split.String())
}
