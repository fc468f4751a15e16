package mesh

// NewChainMesh builds a path graph 0-1-2-...-(n-1), the mesh used by the
// "single minimum" / "double well" concrete scenarios.
func NewChainMesh(n int) *CSRMesh {
	edges := make([][2]int, 0, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return NewCSRMeshFromEdges(n, edges)
}

// NewGridMesh builds a rows x cols grid graph with 4-connectivity, vertex id
// r*cols+c. Used by the "two disjoint minima" concrete scenario.
func NewGridMesh(rows, cols int) *CSRMesh {
	n := rows * cols
	edges := make([][2]int, 0, 2*n)
	idx := func(r, c int) int { return r*cols + c }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				edges = append(edges, [2]int{idx(r, c), idx(r, c+1)})
			}
			if r+1 < rows {
				edges = append(edges, [2]int{idx(r, c), idx(r+1, c)})
			}
		}
	}
	return NewCSRMeshFromEdges(n, edges)
}
