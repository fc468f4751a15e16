package mergetree

import "github.com/topomesh/mergetree/internal/tree"

// Height returns the length, in arcs, of the longest leaf-to-root path in
// the tree. It mirrors the source's stats()/height() traversal (gated
// behind withStatsHeight there, since it's purely diagnostic). The build
// pipeline does not call it; it is not part of the BuildRun record.
func (t *Tree) Height() int {
	maxDepth := 0
	var walk func(nodeID, depth int)
	walk = func(nodeID, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
		n := t.store.Node(tree.NodeID(nodeID))
		if len(n.Up) == 0 {
			return
		}
		arc := t.store.Arc(n.Up[0])
		walk(int(arc.Up), depth+1)
	}
	for _, leafID := range t.store.Leaves() {
		walk(int(leafID), 0)
	}
	return maxDepth
}

// ArcPotential returns, indexed by arc id, the cumulative vertex count
// between the tree's root and that arc's down node: an arc's potential is
// its parent arc's potential plus the arc's own region size.
// It mirrors arcPotential() in the source, a coarse per-arc work estimate
// downstream load-balancing can use to size segmentation chunks.
func (t *Tree) ArcPotential() []int {
	pot := make([]int, t.NumArcs())
	var walk func(nodeID, acc int)
	walk = func(nodeID, acc int) {
		n := t.store.Node(tree.NodeID(nodeID))
		for _, arcID := range n.Down {
			arc := t.store.Arc(arcID)
			childPot := acc + len(arc.Region)
			pot[arcID] = childPot
			walk(int(arc.Down), childPot)
		}
	}
	for _, rootID := range t.store.Roots() {
		walk(int(rootID), 0)
	}
	return pot
}
