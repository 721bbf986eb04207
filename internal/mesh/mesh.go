// Package mesh defines the in-memory data model shared by every Tiling Core
// component: the indexed triangle mesh, its bounding box, the material
// library and the tile tree the pipeline ultimately produces.
package mesh

import "math"

// IndexedMesh is the unit of work passed between every Tiling Core stage.
// Attribute arrays are interleaved float32 slices, matching the layout a
// glTF accessor expects so the GLB writer can copy them with no reshaping.
type IndexedMesh struct {
	Positions []float32 // 3 per vertex, always present
	Normals   []float32 // 3 per vertex, optional (nil if absent)
	UVs       []float32 // 2 per vertex, optional
	Colors    []float32 // 4 per vertex (RGBA), optional

	Indices []uint32 // 3 per triangle

	// MaterialIndex references MaterialLibrary.Materials, or -1 if the mesh
	// carries no material.
	MaterialIndex int
}

// VertexCount returns the number of vertices backing Positions.
func (m *IndexedMesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles backing Indices.
func (m *IndexedMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// HasNormals reports whether the mesh carries a normal attribute.
func (m *IndexedMesh) HasNormals() bool { return len(m.Normals) > 0 }

// HasUVs reports whether the mesh carries a UV attribute.
func (m *IndexedMesh) HasUVs() bool { return len(m.UVs) > 0 }

// HasColors reports whether the mesh carries a vertex color attribute.
func (m *IndexedMesh) HasColors() bool { return len(m.Colors) > 0 }

// Position returns the position of vertex i.
func (m *IndexedMesh) Position(i uint32) [3]float32 {
	o := 3 * i
	return [3]float32{m.Positions[o], m.Positions[o+1], m.Positions[o+2]}
}

// Normal returns the normal of vertex i. Caller must check HasNormals first.
func (m *IndexedMesh) Normal(i uint32) [3]float32 {
	o := 3 * i
	return [3]float32{m.Normals[o], m.Normals[o+1], m.Normals[o+2]}
}

// UV returns the UV of vertex i. Caller must check HasUVs first.
func (m *IndexedMesh) UV(i uint32) [2]float32 {
	o := 2 * i
	return [2]float32{m.UVs[o], m.UVs[o+1]}
}

// Color returns the RGBA color of vertex i. Caller must check HasColors first.
func (m *IndexedMesh) Color(i uint32) [4]float32 {
	o := 4 * i
	return [4]float32{m.Colors[o], m.Colors[o+1], m.Colors[o+2], m.Colors[o+3]}
}

// Triangle returns the 3 vertex indices of triangle t.
func (m *IndexedMesh) Triangle(t int) (a, b, c uint32) {
	o := 3 * t
	return m.Indices[o], m.Indices[o+1], m.Indices[o+2]
}

// Bounds computes the axis-aligned bounding box of the mesh's positions.
func (m *IndexedMesh) Bounds() BoundingBox {
	if len(m.Positions) == 0 {
		return BoundingBox{}
	}
	bb := BoundingBox{
		Min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for i := 0; i < len(m.Positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := float64(m.Positions[i+a])
			if v < bb.Min[a] {
				bb.Min[a] = v
			}
			if v > bb.Max[a] {
				bb.Max[a] = v
			}
		}
	}
	return bb
}

// TriangleArea sums the area of every triangle in the mesh, used by the
// triangle-conservation property checked across octree splits (spec.md §8).
func (m *IndexedMesh) TriangleArea() float64 {
	var total float64
	for t := 0; t < m.TriangleCount(); t++ {
		ia, ib, ic := m.Triangle(t)
		pa, pb, pc := m.Position(ia), m.Position(ib), m.Position(ic)
		total += triangleArea(pa, pb, pc)
	}
	return total
}

func triangleArea(a, b, c [3]float32) float64 {
	ax, ay, az := float64(a[0]), float64(a[1]), float64(a[2])
	bx, by, bz := float64(b[0]), float64(b[1]), float64(b[2])
	cx, cy, cz := float64(c[0]), float64(c[1]), float64(c[2])
	ux, uy, uz := bx-ax, by-ay, bz-az
	vx, vy, vz := cx-ax, cy-ay, cz-az
	cxv := uy*vz - uz*vy
	cyv := uz*vx - ux*vz
	czv := ux*vy - uy*vx
	return 0.5 * math.Sqrt(cxv*cxv+cyv*cyv+czv*czv)
}

// BoundingBox is an axis-aligned box stored in f64 so splits and plane tests
// avoid the precision drift float32 vertex storage would introduce.
type BoundingBox struct {
	Min [3]float64
	Max [3]float64
}

// Mid returns the box midpoint, the plane set C3 splits 8 children against.
func (b BoundingBox) Mid() [3]float64 {
	return [3]float64{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Diagonal returns the box's space-diagonal length, used by C5 to derive
// geometric error and the min-tile-size stop condition.
func (b BoundingBox) Diagonal() float64 {
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Center returns the box center.
func (b BoundingBox) Center() [3]float64 {
	return b.Mid()
}

// HalfExtents returns the box half-size along each axis.
func (b BoundingBox) HalfExtents() [3]float64 {
	return [3]float64{
		(b.Max[0] - b.Min[0]) / 2,
		(b.Max[1] - b.Min[1]) / 2,
		(b.Max[2] - b.Min[2]) / 2,
	}
}

// Octant returns the bounding box of the given octant (0-7) subdivided from
// the parent box at its midpoint. Bit 0 selects +X, bit 1 selects +Y, bit 2
// selects +Z — the same bit-to-axis convention as the teacher's
// getOctantFromElement/getOctantBoundingBox (grid_tree/grid_node.go).
func (b BoundingBox) Octant(i int) BoundingBox {
	mid := b.Mid()
	out := b
	if i&1 != 0 {
		out.Min[0] = mid[0]
	} else {
		out.Max[0] = mid[0]
	}
	if i&2 != 0 {
		out.Min[1] = mid[1]
	} else {
		out.Max[1] = mid[1]
	}
	if i&4 != 0 {
		out.Min[2] = mid[2]
	} else {
		out.Max[2] = mid[2]
	}
	return out
}

// Contains reports whether p lies within the box (inclusive).
func (b BoundingBox) Contains(p [3]float64) bool {
	for a := 0; a < 3; a++ {
		if p[a] < b.Min[a] || p[a] > b.Max[a] {
			return false
		}
	}
	return true
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	out := b
	for a := 0; a < 3; a++ {
		if o.Min[a] < out.Min[a] {
			out.Min[a] = o.Min[a]
		}
		if o.Max[a] > out.Max[a] {
			out.Max[a] = o.Max[a]
		}
	}
	return out
}
