// Package sweep runs the task-parallel leaf-sweep phase of merge tree
// construction: one task per local extremum, propagating a monotone
// wavefront outward until it meets another at a saddle, merging through
// the atomic union-find, and handing the last surviving front off to the
// trunk phase.
package sweep

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/topomesh/mergetree/internal/frontqueue"
	"github.com/topomesh/mergetree/internal/tree"
	"github.com/topomesh/mergetree/internal/unionfind"
	"github.com/topomesh/mergetree/pkg/mesh"
)

// Engine holds everything the leaf-task sweep and the trunk phase share.
// Exported fields are read and mutated by internal/trunk after Run
// completes with exactly one front alive.
type Engine struct {
	Mesh   mesh.Mesh
	Order  Order
	Store  *tree.Store
	Forest *unionfind.Forest

	// UFs publishes, per vertex, the front that most recently visited it.
	// Read by propagate to detect saddles, written once per vertex by
	// whichever front processes it.
	UFs []atomic.Pointer[unionfind.Group]

	activeTasks atomic.Int64
}

// NewEngine builds the sweep engine for a mesh already precomputed into
// store (valences and leaves populated).
func NewEngine(m mesh.Mesh, ord Order, store *tree.Store) *Engine {
	leaves := store.Leaves()
	leafVerts := make([]int, len(leaves))
	for i, id := range leaves {
		leafVerts[i] = store.Node(id).Vertex
	}
	e := &Engine{
		Mesh:   m,
		Order:  ord,
		Store:  store,
		Forest: unionfind.NewForest(leafVerts),
		UFs:    make([]atomic.Pointer[unionfind.Group], m.VertexCount()),
	}
	e.activeTasks.Store(int64(len(leaves)))
	return e
}

// ActiveTasks reports how many fronts are still alive: it starts at the
// number of leaves and drops by one each time a front stops at a saddle
// that another front arrives at last. Fronts that drain to a root on their
// own are not subtracted, so after Run a single-minimum mesh still reports
// 1; whether trunk work remains is recorded in Store.Opened.
func (e *Engine) ActiveTasks() int64 { return e.activeTasks.Load() }

// Run launches one goroutine per leaf and waits for every front to either
// drain to a root on its own or hand off to the trunk phase.
func (e *Engine) Run(ctx context.Context) error {
	leaves := e.Store.Leaves()
	g, _ := errgroup.WithContext(ctx)
	for i, leafNode := range leaves {
		idx := int32(i)
		node := leafNode
		g.Go(func() error {
			e.runTask(idx, node)
			return nil
		})
	}
	return g.Wait()
}

// runTask drives one leaf's front through the monotone propagation loop,
// restarting at the top (rather than recursing) every time it wins a
// saddle merge and continues past it.
func (e *Engine) runTask(leafIdx int32, leafNode tree.NodeID) {
	group := e.Forest.Group(leafIdx)
	startVert := group.Extremum()
	downNode := leafNode

restart:
	q := group.FirstState()
	if q == nil {
		q = frontqueue.New(e.Order.IsLowerSweep)
		group.AddState(q)
	}
	q.AddNewVertex(startVert)
	currentArc := e.Store.OpenSuperArc(downNode)
	group.AddArcToClose(currentArc)
	seenStart := false

	for {
		cur, ok := q.GetNextMinVertex()
		if !ok {
			last := e.Store.Arc(currentArc).LastVisited
			if _, wasArc := e.Store.VertexArc(last); wasArc {
				// last becomes the root node, so it no longer counts
				// toward this arc's region.
				e.Store.Arc(currentArc).VisitCount.Add(-1)
			}
			rootNode := e.Store.MakeNode(last, startVert)
			e.Store.CloseSuperArc(currentArc, rootNode)
			e.Store.AddRoot(rootNode)
			return
		}
		if _, isArc := e.Store.VertexArc(cur); isArc {
			continue
		}
		if cur == startVert {
			if seenStart {
				continue
			}
			seenStart = true
		}

		isSaddle, isLast := e.propagate(cur, group, q)
		e.UFs[cur].Store(group)

		if !isSaddle {
			if cur != startVert {
				e.Store.SetVertexArc(cur, currentArc)
			}
			e.Store.Arc(currentArc).LastVisited = cur
			continue
		}

		e.Store.Opened.Set(cur)
		if !isLast {
			e.activeTasks.Add(-1)
			return
		}
		if e.activeTasks.Load() == 1 {
			// Sole surviving front: leave the bit set, the trunk phase
			// picks this saddle up.
			return
		}

		newGroup, saddleNode := e.CloseAndMergeOnSaddle(cur)
		e.Store.Opened.Clear(cur)
		group = newGroup
		startVert = cur
		downNode = saddleNode
		goto restart
	}
}

// propagate visits cur on behalf of group's front: it inspects every
// neighbor, classifying lower-in-sweep neighbors as either this front's
// own (decrementing cur's valence) or a different front's (marking cur a
// saddle), and enqueues higher-in-sweep neighbors exactly once per front.
func (e *Engine) propagate(cur int, group *unionfind.Group, q *frontqueue.Queue) (becameSaddle, isLast bool) {
	curRep := e.Forest.Find(group)
	nc := e.Mesh.NeighborCount(cur)
	var decr int32
	for i := 0; i < nc; i++ {
		n := e.Mesh.Neighbor(cur, i)
		if e.Order.IsLowerSweep(n, cur) {
			p := e.UFs[n].Load()
			if p == nil || e.Forest.Find(p) != curRep {
				becameSaddle = true
				continue
			}
			decr++
		} else {
			if e.Store.Propagation[n] != curRep.Self() {
				q.AddNewVertex(n)
				e.Store.Propagation[n] = curRep.Self()
			}
		}
	}
	pre := atomicSubInt32(&e.Store.Valences[cur], decr)
	isLast = pre == decr
	return
}

// CloseAndMergeOnSaddle resolves the union of every lower-in-sweep
// neighbor's published front at saddle, closes every super-arc those
// fronts still had open onto a (possibly newly made) node at saddle, and
// returns the surviving merged front together with that node. It is
// shared by the sweep's own continuation and by the trunk phase's
// backbone walk, which calls it on saddles the sweep left pending.
func (e *Engine) CloseAndMergeOnSaddle(saddle int) (*unionfind.Group, tree.NodeID) {
	var rep *unionfind.Group
	nc := e.Mesh.NeighborCount(saddle)
	for i := 0; i < nc; i++ {
		n := e.Mesh.Neighbor(saddle, i)
		if !e.Order.IsLowerSweep(n, saddle) {
			continue
		}
		p := e.UFs[n].Load()
		if p == nil {
			continue
		}
		r := e.Forest.Find(p)
		switch {
		case rep == nil:
			rep = r
		case rep != r:
			rep = e.Forest.Union(rep, r, e.Order.IsLowerSweep)
		}
	}
	if rep == nil {
		return nil, tree.NilNode
	}

	origin := rep.Extremum()
	saddleNode := e.Store.MakeNode(saddle, origin)
	for _, arc := range rep.OpenedArcs() {
		e.Store.CloseSuperArc(arc, saddleNode)
	}
	rep.ClearOpenedArcs()
	rep.MergeStates()
	rep.SetExtremum(saddle)
	return rep, saddleNode
}

func atomicSubInt32(addr *int32, delta int32) int32 {
	for {
		old := atomic.LoadInt32(addr)
		if atomic.CompareAndSwapInt32(addr, old, old-delta) {
			return old
		}
	}
}
