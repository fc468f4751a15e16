package mergetree

import (
	"github.com/topomesh/mergetree/internal/tree"
)

// Node is a read-only view of one internal vertex of the tree: a leaf,
// saddle, or root.
type Node struct {
	ID     int
	Vertex int
	Origin int
	Up     []int
	Down   []int
}

// Arc is a read-only view of one super-arc: the run of the scalar field
// between two consecutive critical points, plus every plain vertex whose
// level set merges into it.
type Arc struct {
	ID     int
	Down   int
	Up     int
	Region []int
}

// Tree is the built, read-only merge tree (join or split).
type Tree struct {
	Type  TreeType
	store *tree.Store
}

// NumNodes returns how many nodes the tree has.
func (t *Tree) NumNodes() int { return t.store.NumNodes() }

// NumArcs returns how many super-arcs the tree has.
func (t *Tree) NumArcs() int { return t.store.NumArcs() }

// Node returns the node with the given id.
func (t *Tree) Node(id int) Node {
	n := t.store.Node(tree.NodeID(id))
	return Node{ID: id, Vertex: n.Vertex, Origin: n.Origin, Up: arcIDsToInts(n.Up), Down: arcIDsToInts(n.Down)}
}

// Arc returns the super-arc with the given id.
func (t *Tree) Arc(id int) Arc {
	a := t.store.Arc(tree.ArcID(id))
	return Arc{ID: id, Down: int(a.Down), Up: int(a.Up), Region: a.Region}
}

// Nodes returns every node, in creation order.
func (t *Tree) Nodes() []Node {
	raw := t.store.Nodes()
	out := make([]Node, len(raw))
	for i := range raw {
		out[i] = t.Node(i)
	}
	return out
}

// Arcs returns every super-arc, in creation order.
func (t *Tree) Arcs() []Arc {
	raw := t.store.Arcs()
	out := make([]Arc, len(raw))
	for i := range raw {
		out[i] = t.Arc(i)
	}
	return out
}

// Leaves returns the node ids that are local extrema.
func (t *Tree) Leaves() []int { return nodeIDsToInts(t.store.Leaves()) }

// Roots returns the node ids that are global extrema of their component.
func (t *Tree) Roots() []int { return nodeIDsToInts(t.store.Roots()) }

func arcIDsToInts(ids []tree.ArcID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func nodeIDsToInts(ids []tree.NodeID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
