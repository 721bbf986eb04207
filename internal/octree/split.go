// Package octree implements the C3 octree splitter: given a mesh and its
// bounding box, cut it into up to 8 child meshes at the box's midpoint
// planes. Triangles wholly inside one octant are reassigned without
// modification (the fast path); triangles straddling a midplane are cut
// with internal/clip (the slow path), generalizing the point-bucketing
// octant-bit-indexing scheme the teacher's grid_tree.GridNode uses for
// points (getOctantFromElement/getOctantBoundingBox) to exact triangle
// geometry.
package octree

import (
	"github.com/ecopia-map/mesh2tiles/internal/clip"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// SplitMesh partitions m into up to 8 child meshes, one per octant of box,
// using the same bit convention as mesh.BoundingBox.Octant (bit0 -> +X,
// bit1 -> +Y, bit2 -> +Z). Octants with no geometry are returned as nil.
func SplitMesh(m *mesh.IndexedMesh, box mesh.BoundingBox) [8]*mesh.IndexedMesh {
	mid := box.Mid()
	hasNormal, hasUV, hasColor := m.HasNormals(), m.HasUVs(), m.HasColors()

	builders := make([]*clip.MeshBuilder, 8)
	for i := range builders {
		builders[i] = clip.NewMeshBuilder(hasNormal, hasUV, hasColor, m.MaterialIndex)
	}

	for t := 0; t < m.TriangleCount(); t++ {
		ia, ib, ic := m.Triangle(t)
		tri := triangleToClip(m, ia, ib, ic)
		triMin, triMax := triangleBounds(tri)

		octants := octantsForBounds(triMin, triMax, mid)
		if len(octants) == 1 {
			// fast path: triangle lies wholly within one octant, no clip needed
			builders[octants[0]].AddTriangle(tri)
			continue
		}

		for _, oct := range octants {
			pieces := clipToOctant(tri, oct, mid, hasNormal, hasUV, hasColor)
			for _, p := range pieces {
				builders[oct].AddTriangle(p)
			}
		}
	}

	var out [8]*mesh.IndexedMesh
	for i, b := range builders {
		cm := b.Mesh()
		if cm.TriangleCount() > 0 {
			out[i] = cm
		}
	}
	return out
}

func triangleToClip(m *mesh.IndexedMesh, ia, ib, ic uint32) clip.Triangle {
	return clip.Triangle{V: [3]clip.Vertex{
		clip.ToClipVertex(m, ia),
		clip.ToClipVertex(m, ib),
		clip.ToClipVertex(m, ic),
	}}
}

func triangleBounds(tri clip.Triangle) (min, max [3]float64) {
	min = tri.V[0].Pos
	max = tri.V[0].Pos
	for _, v := range tri.V[1:] {
		for a := 0; a < 3; a++ {
			if v.Pos[a] < min[a] {
				min[a] = v.Pos[a]
			}
			if v.Pos[a] > max[a] {
				max[a] = v.Pos[a]
			}
		}
	}
	return min, max
}

// octantsForBounds returns the set of octants a triangle's AABB can possibly
// intersect: for each axis, if the AABB lies wholly on one side of mid, only
// that bit value is a candidate; otherwise both are, and the slow path
// resolves exactly which octants the triangle itself actually touches.
func octantsForBounds(min, max, mid [3]float64) []int {
	var bits [3][]int
	for a := 0; a < 3; a++ {
		switch {
		case max[a] <= mid[a]:
			bits[a] = []int{0}
		case min[a] >= mid[a]:
			bits[a] = []int{1}
		default:
			bits[a] = []int{0, 1}
		}
	}

	var out []int
	for _, bx := range bits[0] {
		for _, by := range bits[1] {
			for _, bz := range bits[2] {
				out = append(out, bx|(by<<1)|(bz<<2))
			}
		}
	}
	return out
}

// clipToOctant cuts tri down to the portion lying within octant oct of a box
// split at mid, by intersecting with up to 3 half-space planes.
func clipToOctant(tri clip.Triangle, oct int, mid [3]float64, hasNormal, hasUV, hasColor bool) []clip.Triangle {
	pieces := []clip.Triangle{tri}
	for axis := 0; axis < 3; axis++ {
		bit := (oct >> uint(axis)) & 1
		plane := clip.Plane{
			Axis:      clip.Axis(axis),
			Value:     mid[axis],
			KeepLower: bit == 0,
		}
		var next []clip.Triangle
		for _, p := range pieces {
			next = append(next, clip.ClipTriangle(p, plane, hasNormal, hasUV, hasColor)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return nil
		}
	}
	return pieces
}
