package trunk

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/topomesh/mergetree/internal/sweep"
	"github.com/topomesh/mergetree/internal/tree"
	"github.com/topomesh/mergetree/pkg/collections"
	"github.com/topomesh/mergetree/pkg/parallel"
)

// Segment materializes every super-arc's Region: the list of plain
// (non-node) vertices attributed to it. It runs in three chunked passes:
// size each region from the visit counts SetVertexArc accumulated during
// the sweep, fill each region via one atomically-reserved slot per
// vertex, then sort each region into sweep order.
func Segment(ctx context.Context, engine *sweep.Engine, chunkSize int) {
	numArcs := engine.Store.NumArcs()
	if numArcs == 0 {
		return
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	fillIdx := make([]atomic.Int32, numArcs)
	arcs := engine.Store.Arcs()
	for i := range arcs {
		size := arcs[i].VisitCount.Load()
		if size < 0 {
			size = 0
		}
		arcs[i].Region = make([]int, size)
	}

	n := engine.Store.NumVertices()
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
				a, ok := engine.Store.VertexArc(v)
				if !ok {
					continue
				}
				arc := engine.Store.Arc(a)
				if engine.Store.Node(arc.Down).Vertex == v {
					continue
				}
				idx := fillIdx[a].Add(1) - 1
				if int(idx) >= len(arc.Region) {
					continue
				}
				arc.Region[idx] = v
			}
			return struct{}{}
		},
		func(_ []struct{}) struct{} { return struct{}{} },
	)

	arcIdxPtr := collections.GetIntSlice()
	defer collections.PutIntSlice(arcIdxPtr)
	*arcIdxPtr = collections.GrowInts(*arcIdxPtr, numArcs)
	arcIdx := *arcIdxPtr
	for i := range arcIdx {
		arcIdx[i] = i
	}
	arcWorkers := (numArcs + chunkSize - 1) / chunkSize
	arcCfg := parallel.DefaultPoolConfig().WithWorkers(arcWorkers)
	arcCP := parallel.NewChunkProcessor[int, struct{}](arcCfg)
	arcCP.ProcessChunks(ctx, arcIdx,
		func(_ context.Context, chunk []int, _ int) struct{} {
			for _, id := range chunk {
				region := engine.Store.Arc(tree.ArcID(id)).Region
				sort.Slice(region, func(i, j int) bool {
					return engine.Order.IsLowerSweep(region[i], region[j])
				})
			}
			return struct{}{}
		},
		func(_ []struct{}) struct{} { return struct{}{} },
	)
}
