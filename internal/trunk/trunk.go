// Package trunk finishes a merge tree after the leaf-task sweep has
// reduced every front but one: it walks the short backbone of saddles the
// sweep left pending, closing each in sweep order, runs the mandatory
// segmentation-assignment pass over the vertex range the backbone spans,
// then attaches a synthetic root at the global sweep extremum.
package trunk

import (
	"context"
	"sort"

	"github.com/topomesh/mergetree/internal/sweep"
	"github.com/topomesh/mergetree/internal/tree"
	"github.com/topomesh/mergetree/pkg/collections"
	"github.com/topomesh/mergetree/pkg/parallel"
	"github.com/topomesh/mergetree/pkg/scalars"
)

// Run closes every saddle the sweep phase left open (engine.Store.Opened)
// in ascending sweep order, chains them into a backbone, attaches a final
// root at field's sweep-last vertex, and then assigns every vertex
// strictly between two chain nodes to the arc connecting them - the range
// no leaf task ever visited. It is a no-op if the sweep phase already
// resolved every front to a root on its own.
//
// The assignment pass must run here, before Segment's region-sizing pass:
// Segment sizes each arc's Region purely from the VisitCount SetVertexArc
// accumulates, and a vertex in the backbone's range is otherwise left
// permanently unassigned (vert2tree nil) - the same gap assignChunkTrunk
// closes in the source.
func Run(ctx context.Context, engine *sweep.Engine, field scalars.Field, chunkSize int) {
	sortedRawVertices := field.SortedVertices()

	backbone := engine.Store.Opened.ToSlice()
	if len(backbone) == 0 {
		return
	}
	sort.Slice(backbone, func(i, j int) bool {
		return engine.Order.IsLowerSweep(backbone[i], backbone[j])
	})

	arcChain := make([]tree.ArcID, 0, len(backbone))
	chainVerts := make([]int, 0, len(backbone))
	lastArc := tree.NilArc
	for _, saddle := range backbone {
		rep, node := engine.CloseAndMergeOnSaddle(saddle)
		engine.Store.Opened.Clear(saddle)
		if rep == nil {
			continue
		}
		arc := engine.Store.OpenSuperArc(node)
		rep.AddArcToClose(arc)
		lastArc = arc
		arcChain = append(arcChain, arc)
		chainVerts = append(chainVerts, saddle)
	}
	if lastArc == tree.NilArc {
		return
	}

	rootVertex := engine.Order.SweepMaxVertex(sortedRawVertices)
	if rootVertex < 0 {
		return
	}
	rootNode := engine.Store.MakeNode(rootVertex, rootVertex)
	engine.Store.CloseSuperArc(lastArc, rootNode)
	engine.Store.AddRoot(rootNode)

	assignBackboneRange(ctx, engine, field, chainVerts, arcChain, rootVertex, chunkSize)
}

// assignBackboneRange partitions the sweep-sorted vertex range strictly
// between the first backbone node and the root into len(chainVerts)
// buckets - one per arc in arcChain, in chain order - and assigns every
// still-nil vertex in a bucket to that bucket's arc, accumulating the
// arc's VisitCount.
//
// Each chunk locates its own starting bucket independently, by binary
// search against the chain's sweep-position bounds (mirroring
// getVertInRange's pointer walk, but seeded fresh per chunk rather than
// carried across chunks), so chunks run embarrassingly parallel with no
// shared mutable state beyond the atomic VisitCount itself.
func assignBackboneRange(ctx context.Context, engine *sweep.Engine, field scalars.Field, chainVerts []int, arcChain []tree.ArcID, rootVertex int, chunkSize int) {
	if len(chainVerts) == 0 || len(chainVerts) != len(arcChain) {
		return
	}
	n := field.Len()
	mirror := field.MirrorVertices()
	pos := func(v int) int { return engine.Order.SweepPosition(mirror, n, v) }

	bounds := make([]int, len(chainVerts)+1)
	for i, v := range chainVerts {
		bounds[i] = pos(v)
	}
	bounds[len(chainVerts)] = pos(rootVertex)

	lo, hi := bounds[0], bounds[len(chainVerts)]
	if hi-lo <= 1 {
		return
	}

	sweepSorted := engine.Order.SweepSorted(field.SortedVertices())

	rangeLen := hi - lo - 1
	itemsPtr := collections.GetIntSlice()
	defer collections.PutIntSlice(itemsPtr)
	*itemsPtr = collections.GrowInts(*itemsPtr, rangeLen)
	items := *itemsPtr
	copy(items, sweepSorted[lo+1:hi])

	if chunkSize <= 0 {
		chunkSize = 1
	}
	numWorkers := (rangeLen + chunkSize - 1) / chunkSize
	cfg := parallel.DefaultPoolConfig().WithWorkers(numWorkers)
	cp := parallel.NewChunkProcessor[int, struct{}](cfg)

	lastBucket := len(chainVerts) - 1
	cp.ProcessChunks(ctx, items,
		func(_ context.Context, chunk []int, _ int) struct{} {
			if len(chunk) == 0 {
				return struct{}{}
			}
			start := pos(chunk[0])
			bucket := sort.Search(lastBucket, func(i int) bool { return bounds[i+1] > start })
			for _, v := range chunk {
				p := pos(v)
				for bucket < lastBucket && bounds[bucket+1] <= p {
					bucket++
				}
				if engine.Store.VertexIsNil(v) {
					engine.Store.SetVertexArc(v, arcChain[bucket])
				}
			}
			return struct{}{}
		},
		func(_ []struct{}) struct{} { return struct{}{} },
	)
}
