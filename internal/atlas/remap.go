package atlas

import "github.com/ecopia-map/mesh2tiles/internal/mesh"

// vertexIslandKey identifies one vertex's appearance in one island: a
// vertex whose triangles span two islands needs one distinct copy per
// island, since a single shared UV can't address two different packed
// atlas regions at once.
type vertexIslandKey struct {
	vertex uint32
	island *mesh.UVIsland
}

// RemapUVs rewrites m in place so every triangle's vertices address their
// island's packed location in the shared atlas of atlasSize pixels, inset
// by half a texel on every side so bilinear sampling at an island's edge
// never samples past its own bleed border into a neighbor's pixels.
//
// A vertex referenced by triangles in more than one island is duplicated
// once per island it belongs to — reusing the single original vertex
// would force it to carry one island's UV while the other island's
// triangles need a different one, corrupting both islands' atlas regions.
func RemapUVs(m *mesh.IndexedMesh, islands []*mesh.UVIsland, atlasSize int) {
	if !m.HasUVs() || len(islands) == 0 {
		return
	}
	halfTexel := 0.5 / float32(atlasSize)

	owner := make([]*mesh.UVIsland, m.TriangleCount())
	for _, island := range islands {
		for _, t := range island.Triangles {
			owner[t] = island
		}
	}

	hasNormals, hasColors := m.HasNormals(), m.HasColors()
	newIndexOf := make(map[vertexIslandKey]uint32, m.VertexCount())

	var positions, normals, colors, uvs []float32
	newIndices := make([]uint32, 0, len(m.Indices))

	vertexFor := func(idx uint32, island *mesh.UVIsland) uint32 {
		key := vertexIslandKey{idx, island}
		if ni, ok := newIndexOf[key]; ok {
			return ni
		}

		p := m.Position(idx)
		positions = append(positions, p[0], p[1], p[2])
		if hasNormals {
			n := m.Normal(idx)
			normals = append(normals, n[0], n[1], n[2])
		}
		if hasColors {
			c := m.Color(idx)
			colors = append(colors, c[0], c[1], c[2], c[3])
		}
		uv := m.UV(idx)
		// span one texel less than the packed extent, starting half a texel
		// in, so both island edges land on texel centers inside the island
		su, sv := island.PackScale, island.PackScale
		if w := island.Width(); w > 0 && su > 2*halfTexel/w {
			su -= 2 * halfTexel / w
		}
		if h := island.Height(); h > 0 && sv > 2*halfTexel/h {
			sv -= 2 * halfTexel / h
		}
		nu := island.PackX + halfTexel + (uv[0]-island.UVMin[0])*su
		nv := island.PackY + halfTexel + (uv[1]-island.UVMin[1])*sv
		uvs = append(uvs, nu, nv)

		ni := uint32(len(positions)/3 - 1)
		newIndexOf[key] = ni
		return ni
	}

	for t := 0; t < m.TriangleCount(); t++ {
		island := owner[t]
		if island == nil {
			continue
		}
		ia, ib, ic := m.Triangle(t)
		newIndices = append(newIndices, vertexFor(ia, island), vertexFor(ib, island), vertexFor(ic, island))
	}

	m.Positions = positions
	if hasNormals {
		m.Normals = normals
	}
	if hasColors {
		m.Colors = colors
	}
	m.UVs = uvs
	m.Indices = newIndices
}
