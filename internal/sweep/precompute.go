package sweep

import (
	"context"

	"github.com/topomesh/mergetree/internal/tree"
	"github.com/topomesh/mergetree/pkg/collections"
	"github.com/topomesh/mergetree/pkg/mesh"
	"github.com/topomesh/mergetree/pkg/parallel"
)

// Precompute fills in each vertex's valence (count of lower-in-sweep
// neighbors) and registers every valence-zero vertex as a leaf, in
// parallel chunks of roughly chunkSize vertices. It must run before an
// Engine is constructed, since NewEngine reads store.Leaves().
func Precompute(ctx context.Context, m mesh.Mesh, ord Order, store *tree.Store, chunkSize int) {
	n := m.VertexCount()
	if n == 0 {
		return
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	itemsPtr := collections.GetIntSlice()
	defer collections.PutIntSlice(itemsPtr)
	*itemsPtr = collections.GrowInts(*itemsPtr, n)
	items := *itemsPtr
	for i := range items {
		items[i] = i
	}

	numWorkers := (n + chunkSize - 1) / chunkSize
	cfg := parallel.DefaultPoolConfig().WithWorkers(numWorkers)
	cp := parallel.NewChunkProcessor[int, struct{}](cfg)

	cp.ProcessChunks(ctx, items,
		func(_ context.Context, chunk []int, _ int) struct{} {
			for _, v := range chunk {
				var valence int32
				nc := m.NeighborCount(v)
				for i := 0; i < nc; i++ {
					if ord.IsLowerSweep(m.Neighbor(v, i), v) {
						valence++
					}
				}
				store.Valences[v] = valence
				if valence == 0 {
					id := store.MakeNode(v, v)
					store.AddLeaf(id)
				}
			}
			return struct{}{}
		},
		func(_ []struct{}) struct{} { return struct{}{} },
	)
}
