package sweep

import "github.com/topomesh/mergetree/pkg/scalars"

// Order bundles the sweep-order comparator for one tree direction, plus
// enough information to recover the global sweep extremum from the
// scalar field's ascending-raw-order vertex list.
type Order struct {
	// IsLowerSweep is the sweep-order comparator: isLower for a join tree,
	// isHigher for a split tree.
	IsLowerSweep func(a, b int) bool
	reversedRaw  bool
}

// JoinOrder builds the sweep order for a join tree: sweep-ascending is
// raw-ascending.
func JoinOrder(f scalars.Field) Order {
	return Order{IsLowerSweep: f.IsLower, reversedRaw: false}
}

// SplitOrder builds the sweep order for a split tree: sweep-ascending is
// raw-descending.
func SplitOrder(f scalars.Field) Order {
	return Order{IsLowerSweep: f.IsHigher, reversedRaw: true}
}

// SweepMaxVertex returns the vertex that is sweep-last, given the field's
// ascending-raw-order vertex list.
func (o Order) SweepMaxVertex(sortedRaw []int) int {
	if len(sortedRaw) == 0 {
		return -1
	}
	if o.reversedRaw {
		return sortedRaw[0]
	}
	return sortedRaw[len(sortedRaw)-1]
}

// SweepPosition returns vertex v's position in sweep order, computed from
// its position in the field's ascending-raw-order vertex list (i.e.
// mirrorRaw = field.MirrorVertices()). For a join tree sweep-ascending is
// raw-ascending, so the two positions coincide; for a split tree they are
// mirrored around the vertex count.
func (o Order) SweepPosition(mirrorRaw []int, n int, v int) int {
	p := mirrorRaw[v]
	if o.reversedRaw {
		return n - 1 - p
	}
	return p
}

// SweepSorted reorders sortedRaw (the field's ascending-raw-order vertex
// list) into ascending sweep order.
func (o Order) SweepSorted(sortedRaw []int) []int {
	n := len(sortedRaw)
	out := make([]int, n)
	if o.reversedRaw {
		for i, v := range sortedRaw {
			out[n-1-i] = v
		}
		return out
	}
	copy(out, sortedRaw)
	return out
}
