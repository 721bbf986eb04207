package clip

import "github.com/ecopia-map/mesh2tiles/internal/mesh"

// MeshBuilder accumulates clipped triangles into a new IndexedMesh,
// deduplicating vertices by mesh.DedupKey so triangles that shared a vertex
// (or an on-plane intersection point) before clipping still share it after —
// the 3D, attribute-aware analogue of the splitMap edge-dedup used by 2D
// polygon clippers.
type MeshBuilder struct {
	hasNormal, hasUV, hasColor bool
	materialIndex              int

	index map[mesh.DedupKey]uint32
	out   mesh.IndexedMesh
}

// NewMeshBuilder starts a builder for a mesh carrying the given attributes,
// inherited from the source mesh being clipped.
func NewMeshBuilder(hasNormal, hasUV, hasColor bool, materialIndex int) *MeshBuilder {
	return &MeshBuilder{
		hasNormal:     hasNormal,
		hasUV:         hasUV,
		hasColor:      hasColor,
		materialIndex: materialIndex,
		index:         make(map[mesh.DedupKey]uint32),
		out:           mesh.IndexedMesh{MaterialIndex: materialIndex},
	}
}

// AddTriangle appends a clipped triangle, deduplicating its 3 vertices
// against every vertex added so far in this builder.
func (b *MeshBuilder) AddTriangle(tri Triangle) {
	for _, v := range tri.V {
		b.out.Indices = append(b.out.Indices, b.addVertex(v))
	}
}

func (b *MeshBuilder) addVertex(v Vertex) uint32 {
	pos := [3]float32{float32(v.Pos[0]), float32(v.Pos[1]), float32(v.Pos[2])}
	var normal [3]float32
	var uv [2]float32
	if b.hasNormal {
		normal = [3]float32{float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2])}
	}
	if b.hasUV {
		uv = [2]float32{float32(v.UV[0]), float32(v.UV[1])}
	}

	key := mesh.NewDedupKey(pos, normal, b.hasNormal, uv, b.hasUV)
	if idx, ok := b.index[key]; ok {
		return idx
	}

	idx := uint32(b.out.VertexCount())
	b.out.Positions = append(b.out.Positions, pos[0], pos[1], pos[2])
	if b.hasNormal {
		b.out.Normals = append(b.out.Normals, normal[0], normal[1], normal[2])
	}
	if b.hasUV {
		b.out.UVs = append(b.out.UVs, uv[0], uv[1])
	}
	if b.hasColor {
		b.out.Colors = append(b.out.Colors, float32(v.Color[0]), float32(v.Color[1]), float32(v.Color[2]), float32(v.Color[3]))
	}
	b.index[key] = idx
	return idx
}

// Mesh returns the accumulated mesh. An empty builder returns a mesh with no
// triangles, which callers should treat as "this octant is empty".
func (b *MeshBuilder) Mesh() *mesh.IndexedMesh {
	return &b.out
}
