// Package atlas implements C4, the texture atlas repacker: it detects UV
// islands, bin-packs them into a shared atlas, composites the source
// textures into it with bleed padding, and remaps every vertex UV into the
// packed layout.
package atlas

import "github.com/ecopia-map/mesh2tiles/internal/mesh"

// edgeKey identifies an undirected edge between two deduplicated vertices,
// the unit DetectIslands floods across — two triangles sharing an edge in
// UV space belong to the same island.
type edgeKey struct {
	a, b mesh.DedupKey
}

func newEdgeKey(a, b mesh.DedupKey) edgeKey {
	if less(a, b) {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

func less(a, b mesh.DedupKey) bool {
	switch {
	case a.PX != b.PX:
		return a.PX < b.PX
	case a.PY != b.PY:
		return a.PY < b.PY
	case a.PZ != b.PZ:
		return a.PZ < b.PZ
	case a.U != b.U:
		return a.U < b.U
	default:
		return a.V < b.V
	}
}

// DetectIslands partitions m's triangles into UV-connected components via
// BFS over an edge-adjacency map keyed on deduplicated vertex pairs, then
// computes each island's UV bounding box.
func DetectIslands(m *mesh.IndexedMesh) []*mesh.UVIsland {
	if !m.HasUVs() || m.TriangleCount() == 0 {
		return nil
	}

	keys := vertexKeys(m)

	adjacency := make(map[edgeKey][]int) // edge -> triangles sharing it
	for t := 0; t < m.TriangleCount(); t++ {
		ia, ib, ic := m.Triangle(t)
		edges := [3]edgeKey{
			newEdgeKey(keys[ia], keys[ib]),
			newEdgeKey(keys[ib], keys[ic]),
			newEdgeKey(keys[ic], keys[ia]),
		}
		for _, e := range edges {
			adjacency[e] = append(adjacency[e], t)
		}
	}

	triNeighbors := make(map[int][]int)
	for _, tris := range adjacency {
		if len(tris) < 2 {
			continue
		}
		for i := 0; i < len(tris); i++ {
			for j := 0; j < len(tris); j++ {
				if i != j {
					triNeighbors[tris[i]] = append(triNeighbors[tris[i]], tris[j])
				}
			}
		}
	}

	visited := make([]bool, m.TriangleCount())
	var islands []*mesh.UVIsland

	for t := 0; t < m.TriangleCount(); t++ {
		if visited[t] {
			continue
		}
		island := &mesh.UVIsland{}
		queue := []int{t}
		visited[t] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			island.Triangles = append(island.Triangles, cur)
			for _, n := range triNeighbors[cur] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		computeUVBounds(m, island)
		islands = append(islands, island)
	}
	return islands
}

func vertexKeys(m *mesh.IndexedMesh) []mesh.DedupKey {
	keys := make([]mesh.DedupKey, m.VertexCount())
	hasNormal, hasUV := m.HasNormals(), m.HasUVs()
	for i := 0; i < m.VertexCount(); i++ {
		var normal [3]float32
		var uv [2]float32
		if hasNormal {
			normal = m.Normal(uint32(i))
		}
		if hasUV {
			uv = m.UV(uint32(i))
		}
		keys[i] = mesh.NewDedupKey(m.Position(uint32(i)), normal, hasNormal, uv, hasUV)
	}
	return keys
}

func computeUVBounds(m *mesh.IndexedMesh, island *mesh.UVIsland) {
	first := true
	for _, t := range island.Triangles {
		ia, ib, ic := m.Triangle(t)
		for _, idx := range [3]uint32{ia, ib, ic} {
			uv := m.UV(idx)
			if first {
				island.UVMin = uv
				island.UVMax = uv
				first = false
				continue
			}
			if uv[0] < island.UVMin[0] {
				island.UVMin[0] = uv[0]
			}
			if uv[1] < island.UVMin[1] {
				island.UVMin[1] = uv[1]
			}
			if uv[0] > island.UVMax[0] {
				island.UVMax[0] = uv[0]
			}
			if uv[1] > island.UVMax[1] {
				island.UVMax[1] = uv[1]
			}
		}
	}
}
