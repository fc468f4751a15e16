package mesh

// CSRMesh is a compressed-sparse-row adjacency representation: offsets[v]
// .. offsets[v+1] indexes the slice of v's neighbors inside edges. It is the
// Mesh equivalent of a CSR graph.
type CSRMesh struct {
	offsets []int32
	edges   []int32
}

// NewCSRMesh wraps a pre-built CSR pair. offsets must have length n+1.
func NewCSRMesh(offsets, edges []int32) *CSRMesh {
	return &CSRMesh{offsets: offsets, edges: edges}
}

// NewCSRMeshFromAdjacency builds a CSRMesh from an adjacency list, flattening
// it into CSR form the way graph loaders in the wild commonly do.
func NewCSRMeshFromAdjacency(adj [][]int) *CSRMesh {
	n := len(adj)
	offsets := make([]int32, n+1)
	total := 0
	for _, nbrs := range adj {
		total += len(nbrs)
	}
	edges := make([]int32, 0, total)
	for u := 0; u < n; u++ {
		offsets[u] = int32(len(edges))
		for _, v := range adj[u] {
			edges = append(edges, int32(v))
		}
	}
	offsets[n] = int32(len(edges))
	return &CSRMesh{offsets: offsets, edges: edges}
}

// NewCSRMeshFromEdges builds an undirected CSRMesh from a list of (u,v)
// edges, deduplicating and symmetrizing them.
func NewCSRMeshFromEdges(n int, edgeList [][2]int) *CSRMesh {
	adj := make([][]int, n)
	seen := make([]map[int]bool, n)
	for i := range seen {
		seen[i] = make(map[int]bool)
	}
	add := func(u, v int) {
		if u == v || seen[u][v] {
			return
		}
		seen[u][v] = true
		adj[u] = append(adj[u], v)
	}
	for _, e := range edgeList {
		add(e[0], e[1])
		add(e[1], e[0])
	}
	return NewCSRMeshFromAdjacency(adj)
}

// NewTriangleMesh builds a CSRMesh from a triangle soup, one (a,b,c) vertex
// triple per triangle. Each triangle contributes its three edges.
func NewTriangleMesh(n int, triangles [][3]int) *CSRMesh {
	edges := make([][2]int, 0, len(triangles)*3)
	for _, t := range triangles {
		edges = append(edges, [2]int{t[0], t[1]}, [2]int{t[1], t[2]}, [2]int{t[2], t[0]})
	}
	return NewCSRMeshFromEdges(n, edges)
}

func (m *CSRMesh) VertexCount() int { return len(m.offsets) - 1 }

func (m *CSRMesh) NeighborCount(v int) int {
	return int(m.offsets[v+1] - m.offsets[v])
}

func (m *CSRMesh) Neighbor(v, i int) int {
	return int(m.edges[m.offsets[v]+int32(i)])
}

// ToAdjacency reconstructs the adjacency-list form, the inverse of
// NewCSRMeshFromAdjacency.
func (m *CSRMesh) ToAdjacency() [][]int {
	n := m.VertexCount()
	adj := make([][]int, n)
	for u := 0; u < n; u++ {
		for idx := m.offsets[u]; idx < m.offsets[u+1]; idx++ {
			adj[u] = append(adj[u], int(m.edges[idx]))
		}
	}
	return adj
}
