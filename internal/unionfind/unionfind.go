// Package unionfind implements the lock-free disjoint-set-with-state the
// merge-tree sweep uses to track which wavefronts ("fronts") are still
// alive and which super-arcs and front queues belong to each. Elements form
// a forest addressed by integer index into an arena, in place of the raw
// pointer-plus-CAS scheme a C++ rendition would use.
package unionfind

import (
	"sync/atomic"

	"github.com/topomesh/mergetree/internal/frontqueue"
	"github.com/topomesh/mergetree/internal/tree"
)

// Group is one element of the disjoint-set forest: a still-alive wavefront,
// or, once it has absorbed others via Union, their fused representative.
type Group struct {
	self     int32
	parent   atomic.Int32
	extremum atomic.Int32

	states   []*frontqueue.Queue
	openArcs []tree.ArcID
}

func newGroup(self int32, extremum int) *Group {
	g := &Group{self: self}
	g.parent.Store(self)
	g.extremum.Store(int32(extremum))
	return g
}

// Self returns the group's fixed arena index, stable across unions.
func (g *Group) Self() int32 { return g.self }

// Extremum returns the leaf (or most recently absorbed saddle) vertex that
// identifies this front.
func (g *Group) Extremum() int { return int(g.extremum.Load()) }

// SetExtremum updates the front's identifying vertex, called after a saddle
// merge makes the saddle the new extremum for the surviving front.
func (g *Group) SetExtremum(v int) { g.extremum.Store(int32(v)) }

// AddArcToClose records an opened super-arc as belonging to this front.
func (g *Group) AddArcToClose(a tree.ArcID) { g.openArcs = append(g.openArcs, a) }

// OpenedArcs returns the super-arcs opened but not yet closed by this
// front.
func (g *Group) OpenedArcs() []tree.ArcID { return g.openArcs }

// ClearOpenedArcs empties the open-arc list, called once they have all been
// closed onto a saddle node.
func (g *Group) ClearOpenedArcs() { g.openArcs = nil }

// AddState attaches a front queue to this front.
func (g *Group) AddState(q *frontqueue.Queue) { g.states = append(g.states, q) }

// FirstState returns the first attached front queue, or nil.
func (g *Group) FirstState() *frontqueue.Queue {
	if len(g.states) == 0 {
		return nil
	}
	return g.states[0]
}

// NbStates returns how many front queues are currently attached.
func (g *Group) NbStates() int { return len(g.states) }

// MergeStates collapses every attached queue into the first.
func (g *Group) MergeStates() {
	if len(g.states) <= 1 {
		return
	}
	first := g.states[0]
	for _, q := range g.states[1:] {
		first.MergeStates(q)
	}
	g.states = g.states[:1]
}

// Forest is the arena of Groups, one per leaf task. Unions never allocate
// new Groups; they only relink parent pointers, so the arena size is fixed
// at construction.
type Forest struct {
	groups []*Group
}

// NewForest allocates nbLeaves groups, one per leaf, each initially its own
// root with the given starting extremum (the leaf vertex).
func NewForest(leafVertices []int) *Forest {
	f := &Forest{groups: make([]*Group, len(leafVertices))}
	for i, v := range leafVertices {
		f.groups[i] = newGroup(int32(i), v)
	}
	return f
}

// Group returns the group at arena index i.
func (f *Forest) Group(i int32) *Group { return f.groups[i] }

// Find returns g's current representative, compressing the path as it
// goes. Concurrent Find and Union calls observe a consistent parent chain
// because parent stores/loads are sequentially-consistent atomics.
func (f *Forest) Find(g *Group) *Group {
	i := g.self
	for {
		cur := f.groups[i]
		p := cur.parent.Load()
		if p == i {
			return cur
		}
		gp := f.groups[p]
		gpp := gp.parent.Load()
		if gpp != p {
			// Partial path compression: skip a level when we can see the
			// grandparent has already moved on.
			cur.parent.CompareAndSwap(p, gpp)
		}
		i = p
	}
}

// Union merges the classes of a and b, lock-free: it resolves both roots,
// then CASes the earlier-in-sweep root's parent onto the later one (so the
// representative is always the most-advanced front), and transfers the
// loser's open arcs and front queues to the winner. less must be the
// sweep-order comparator (isLower for a join tree, isHigher for a split
// tree) applied to each root's Extremum.
func (f *Forest) Union(a, b *Group, less func(x, y int) bool) *Group {
	for {
		ra := f.Find(a)
		rb := f.Find(b)
		if ra == rb {
			return ra
		}
		winner, loser := ra, rb
		if less(ra.Extremum(), rb.Extremum()) {
			winner, loser = rb, ra
		}
		lp := loser.parent.Load()
		if lp != loser.self {
			// Someone already merged loser elsewhere; retry against its
			// current representative.
			a, b = loser, winner
			continue
		}
		if !loser.parent.CompareAndSwap(lp, winner.self) {
			continue
		}
		winner.openArcs = append(winner.openArcs, loser.openArcs...)
		loser.openArcs = nil
		winner.states = append(winner.states, loser.states...)
		loser.states = nil
		return winner
	}
}
