// Package tree holds the merge tree's data model: append-only node and
// super-arc arenas, and the flat per-vertex bookkeeping arrays (vert2tree,
// valences, propagation map, opened-nodes bitmap) that the sweep and trunk
// phases share.
package tree

import (
	"sync/atomic"

	"github.com/topomesh/mergetree/pkg/collections"
)

// NodeID indexes the node arena. NilNode marks "no node".
type NodeID int32

// ArcID indexes the super-arc arena. NilArc marks "open" or "no arc".
type ArcID int32

const (
	NilNode NodeID = -1
	NilArc  ArcID  = -1
)

// Node is an internal vertex of the tree.
type Node struct {
	Vertex int
	Origin int
	Up     []ArcID
	Down   []ArcID
}

// SuperArc is a directed edge of the tree, down-node to up-node.
type SuperArc struct {
	Down        NodeID
	Up          NodeID
	LastVisited int
	VisitCount  atomic.Int64
	Region      []int
	Replacant   ArcID
}

// Store is the append-only tree arena plus the flat vertex-indexed arrays
// the algorithm shares across tasks.
type Store struct {
	nodes    []Node
	arcs     []SuperArc
	nodesLen atomic.Int64
	arcsLen  atomic.Int64

	vert2tree []atomic.Int64 // 0 = nil, n>0 = arc(n-1), n<0 = node(-n-1)

	Valences    []int32
	Propagation []int32 // representative group self-index that already enqueued this vertex, -1 if none
	Opened      *collections.AtomicBitset

	leaves    []int32
	leavesLen atomic.Int64
	roots     []int32
	rootsLen  atomic.Int64
}

// NewStore allocates a Store sized for n vertices. Node/arc capacity is
// bounded generously (every vertex could in principle become its own node,
// and every node can have at most two incident arcs per neighbor edge in the
// worst case for this algorithm's usage pattern) so getNext never overflows
// its backing array.
func NewStore(n int) *Store {
	maxNodes := n + 2
	maxArcs := 2*n + 4
	s := &Store{
		nodes:       make([]Node, maxNodes),
		arcs:        make([]SuperArc, maxArcs),
		vert2tree:   make([]atomic.Int64, n),
		Valences:    make([]int32, n),
		Propagation: make([]int32, n),
		Opened:      collections.NewAtomicBitset(n),
		leaves:      make([]int32, n),
		roots:       make([]int32, n),
	}
	for i := range s.Propagation {
		s.Propagation[i] = -1
	}
	for i := range s.arcs {
		s.arcs[i].Up = NilNode
		s.arcs[i].Replacant = NilArc
	}
	return s
}

// getNextNode atomically reserves the next node slot.
func (s *Store) getNextNode() NodeID {
	i := s.nodesLen.Add(1) - 1
	return NodeID(i)
}

// getNextArc atomically reserves the next super-arc slot.
func (s *Store) getNextArc() ArcID {
	i := s.arcsLen.Add(1) - 1
	return ArcID(i)
}

// NumVertices returns the capacity of the per-vertex arrays.
func (s *Store) NumVertices() int { return len(s.vert2tree) }

// Node returns a pointer to the node with the given id.
func (s *Store) Node(id NodeID) *Node { return &s.nodes[id] }

// Arc returns a pointer to the super-arc with the given id.
func (s *Store) Arc(id ArcID) *SuperArc { return &s.arcs[id] }

// NumNodes returns how many nodes have been created so far.
func (s *Store) NumNodes() int { return int(s.nodesLen.Load()) }

// NumArcs returns how many super-arcs have been created so far.
func (s *Store) NumArcs() int { return int(s.arcsLen.Load()) }

// Nodes returns a slice view of every created node, in creation order.
func (s *Store) Nodes() []Node { return s.nodes[:s.NumNodes()] }

// Arcs returns a slice view of every created super-arc, in creation order.
func (s *Store) Arcs() []SuperArc { return s.arcs[:s.NumArcs()] }

// --- vert2tree tri-state -------------------------------------------------

// VertexNode reports (id, true) if vertex v has already been promoted to a
// node.
func (s *Store) VertexNode(v int) (NodeID, bool) {
	raw := s.vert2tree[v].Load()
	if raw < 0 {
		return NodeID(-raw - 1), true
	}
	return NilNode, false
}

// VertexArc reports (id, true) if vertex v is currently attributed to a
// super-arc.
func (s *Store) VertexArc(v int) (ArcID, bool) {
	raw := s.vert2tree[v].Load()
	if raw > 0 {
		return ArcID(raw - 1), true
	}
	return NilArc, false
}

// VertexIsNil reports whether vertex v has not yet been attributed.
func (s *Store) VertexIsNil(v int) bool { return s.vert2tree[v].Load() == 0 }

// SetVertexArc promotes vertex v to the given arc (nil -> arc transition)
// and bumps the arc's visit count, used by the trunk phase to size each
// arc's region before the segmentation fill pass.
func (s *Store) SetVertexArc(v int, a ArcID) {
	s.vert2tree[v].Store(int64(a) + 1)
	s.arcs[a].VisitCount.Add(1)
}

// SetVertexNode promotes vertex v to the given node (nil|arc -> node).
func (s *Store) SetVertexNode(v int, id NodeID) { s.vert2tree[v].Store(-int64(id) - 1) }

// --- node/arc construction -----------------------------------------------

// MakeNode returns the existing node for vertex, or creates a new one with
// the given origin leaf.
func (s *Store) MakeNode(vertex, origin int) NodeID {
	if id, ok := s.VertexNode(vertex); ok {
		return id
	}
	id := s.getNextNode()
	s.nodes[id] = Node{Vertex: vertex, Origin: origin}
	s.SetVertexNode(vertex, id)
	return id
}

// OpenSuperArc creates a new open (unclosed) super-arc rooted at down.
func (s *Store) OpenSuperArc(down NodeID) ArcID {
	id := s.getNextArc()
	s.arcs[id] = SuperArc{Down: down, Up: NilNode, LastVisited: s.nodes[down].Vertex, Replacant: NilArc}
	s.nodes[down].Up = append(s.nodes[down].Up, id)
	return id
}

// MakeSuperArc creates an already-closed super-arc between down and up,
// used by the trunk phase's backbone chain construction.
func (s *Store) MakeSuperArc(down, up NodeID) ArcID {
	id := s.getNextArc()
	s.arcs[id] = SuperArc{Down: down, Up: up, LastVisited: s.nodes[up].Vertex, Replacant: NilArc}
	s.nodes[down].Up = append(s.nodes[down].Up, id)
	s.nodes[up].Down = append(s.nodes[up].Down, id)
	return id
}

// CloseSuperArc closes an open arc onto the up node.
func (s *Store) CloseSuperArc(a ArcID, up NodeID) {
	arc := &s.arcs[a]
	arc.Up = up
	arc.LastVisited = s.nodes[up].Vertex
	s.nodes[up].Down = append(s.nodes[up].Down, a)
}

// --- append-only leaves/roots ---------------------------------------------

// AddLeaf appends a leaf node id and returns its position.
func (s *Store) AddLeaf(id NodeID) int {
	i := s.leavesLen.Add(1) - 1
	s.leaves[i] = int32(id)
	return int(i)
}

// AddRoot appends a root node id.
func (s *Store) AddRoot(id NodeID) {
	i := s.rootsLen.Add(1) - 1
	s.roots[i] = int32(id)
}

// Leaves returns the leaf node ids discovered by precompute.
func (s *Store) Leaves() []NodeID {
	out := make([]NodeID, s.leavesLen.Load())
	for i := range out {
		out[i] = NodeID(s.leaves[i])
	}
	return out
}

// Roots returns the root node ids discovered while closing the tree.
func (s *Store) Roots() []NodeID {
	out := make([]NodeID, s.rootsLen.Load())
	for i := range out {
		out[i] = NodeID(s.roots[i])
	}
	return out
}

// MergeArc marks arc sa as superseded by recept. If changeConn is true, the
// down/up nodes' adjacency lists are rewritten to reference recept instead
// of sa.
func (s *Store) MergeArc(sa, recept ArcID, changeConn bool) {
	s.arcs[sa].Replacant = recept
	if !changeConn {
		return
	}
	down, up := s.arcs[sa].Down, s.arcs[sa].Up
	if down != NilNode {
		replaceArcID(&s.nodes[down].Up, sa, recept)
	}
	if up != NilNode {
		replaceArcID(&s.nodes[up].Down, sa, recept)
	}
}

// InsertNode splits the arc currently owning vertex v into two arcs joined
// at a new node placed on v, cutting the arc's region at v. isLowerSweep
// must be the sweep-order comparator for the tree being built.
func (s *Store) InsertNode(v int, isLowerSweep func(a, b int) bool) (NodeID, ArcID) {
	a, ok := s.VertexArc(v)
	if !ok {
		panic("tree: InsertNode called on a vertex with no owning arc")
	}
	arc := &s.arcs[a]
	newNode := s.getNextNode()
	s.nodes[newNode] = Node{Vertex: v, Origin: s.nodes[arc.Down].Origin}
	s.SetVertexNode(v, newNode)

	var below, above []int
	for _, u := range arc.Region {
		if u == v {
			continue
		}
		if isLowerSweep(u, v) {
			below = append(below, u)
		} else {
			above = append(above, u)
		}
	}
	arc.Region = below
	oldUp := arc.Up
	arc.Up = newNode
	if oldUp != NilNode {
		removeArcID(&s.nodes[oldUp].Down, a)
	}
	s.nodes[newNode].Down = append(s.nodes[newNode].Down, a)

	newArc := s.getNextArc()
	s.arcs[newArc] = SuperArc{Down: newNode, Up: oldUp, Region: above, Replacant: NilArc}
	if oldUp != NilNode {
		s.arcs[newArc].LastVisited = s.nodes[oldUp].Vertex
		s.nodes[oldUp].Down = append(s.nodes[oldUp].Down, newArc)
	}
	s.nodes[newNode].Up = append(s.nodes[newNode].Up, newArc)
	return newNode, newArc
}

func replaceArcID(list *[]ArcID, old, new ArcID) {
	for i, id := range *list {
		if id == old {
			(*list)[i] = new
			return
		}
	}
}

func removeArcID(list *[]ArcID, id ArcID) {
	for i, cur := range *list {
		if cur == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
