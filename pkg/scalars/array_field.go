package scalars

import "sort"

// ArrayField is a Field backed by a plain []float64, with ties broken by a
// caller-supplied Comparator (defaulting to ByVertexID).
type ArrayField struct {
	values  []float64
	tie     Comparator
	sorted  []int
	mirror  []int
}

// NewArrayField builds an ArrayField over values, breaking ties with tie.
// A nil tie defaults to ByVertexID.
func NewArrayField(values []float64, tie Comparator) *ArrayField {
	if tie == nil {
		tie = ByVertexID
	}
	f := &ArrayField{values: values, tie: tie}
	f.sorted = make([]int, len(values))
	for i := range f.sorted {
		f.sorted[i] = i
	}
	sort.Slice(f.sorted, func(i, j int) bool {
		return f.IsLower(f.sorted[i], f.sorted[j])
	})
	f.mirror = make([]int, len(values))
	for pos, v := range f.sorted {
		f.mirror[v] = pos
	}
	return f
}

// Negated returns a new ArrayField over the negated values, used by the
// join/split roundtrip-under-negation property test. Ties are re-broken by
// the inverse of the original tie-break so that the roundtrip is exact.
func (f *ArrayField) Negated() *ArrayField {
	neg := make([]float64, len(f.values))
	for i, v := range f.values {
		neg[i] = -v
	}
	return NewArrayField(neg, func(a, b int) bool { return f.tie(b, a) })
}

func (f *ArrayField) Len() int { return len(f.values) }

func (f *ArrayField) Value(v int) float64 { return f.values[v] }

func (f *ArrayField) IsLower(a, b int) bool {
	if a == b {
		return false
	}
	if f.values[a] != f.values[b] {
		return f.values[a] < f.values[b]
	}
	return f.tie(a, b)
}

// IsHigher is the strict converse of IsLower, so sweep order and up order
// are always consistent total orders over the same tie-break.
func (f *ArrayField) IsHigher(a, b int) bool { return f.IsLower(b, a) }

func (f *ArrayField) SortedVertices() []int { return f.sorted }

func (f *ArrayField) MirrorVertices() []int { return f.mirror }
