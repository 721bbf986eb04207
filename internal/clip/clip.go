// Package clip implements the Sutherland-Hodgman polygon clipper the octree
// splitter (internal/octree) uses to cut triangles straddling a split plane.
// The approach mirrors a classic 2D polygon-clip-against-a-frame routine,
// generalized from a fixed clip frame to a single axis-aligned plane and
// from 2D to 3D attributed vertices.
package clip

import (
	"math"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

const eps = 1e-9

// Axis identifies which coordinate a clip plane is perpendicular to.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Vertex is a single attributed vertex as carried through clipping. Normal
// and UV are only meaningful when the owning mesh HasNormals/HasUVs.
type Vertex struct {
	Pos    [3]float64
	Normal [3]float64
	UV     [2]float64
	Color  [4]float64
}

// value returns the coordinate of v along a.
func (a Axis) value(v [3]float64) float64 { return v[a] }

// Plane is a half-space test: keep vertices where value(axis) compares to
// Value per Keep{Lower,Upper}.
type Plane struct {
	Axis  Axis
	Value float64
	// KeepLower keeps the side with value <= Value; otherwise value >= Value.
	KeepLower bool
}

func (p Plane) inside(v [3]float64) bool {
	d := v[p.Axis] - p.Value
	if p.KeepLower {
		return d <= eps
	}
	return d >= -eps
}

// signedDistance is used for interpolation parameter t, independent of
// which side is kept.
func (p Plane) signedDistance(v [3]float64) float64 {
	return v[p.Axis] - p.Value
}

// Triangle is a 3-vertex input/output unit for ClipTriangle.
type Triangle struct {
	V [3]Vertex
}

// ClipTriangle clips a single triangle against plane, returning zero or more
// triangles (fan-triangulated from the resulting convex polygon) that lie on
// the kept side. hasNormal/hasUV/hasColor indicate which attributes are
// valid in the input and should be interpolated; callers must pass the same
// flags the source mesh reports via HasNormals/HasUVs/HasColors.
func ClipTriangle(tri Triangle, plane Plane, hasNormal, hasUV, hasColor bool) []Triangle {
	poly := clipPolygon(tri.V[:], plane, hasNormal, hasUV, hasColor)
	return triangulateFan(poly)
}

// clipPolygon runs one Sutherland-Hodgman pass of an input polygon against
// a single half-space plane.
func clipPolygon(input []Vertex, plane Plane, hasNormal, hasUV, hasColor bool) []Vertex {
	if len(input) == 0 {
		return nil
	}
	var output []Vertex
	n := len(input)
	for i := 0; i < n; i++ {
		curr := input[i]
		prev := input[(i+n-1)%n]

		currIn := plane.inside(curr.Pos)
		prevIn := plane.inside(prev.Pos)

		if currIn {
			if !prevIn {
				output = append(output, interpolate(prev, curr, plane, hasNormal, hasUV, hasColor))
			}
			output = append(output, curr)
		} else if prevIn {
			output = append(output, interpolate(prev, curr, plane, hasNormal, hasUV, hasColor))
		}
	}
	return output
}

// interpolate finds where segment prev->curr crosses plane and linearly
// interpolates every attribute at that parameter. Normals are re-normalized
// after interpolation since a linear blend of two unit vectors is not unit
// length in general.
func interpolate(prev, curr Vertex, plane Plane, hasNormal, hasUV, hasColor bool) Vertex {
	dPrev := plane.signedDistance(prev.Pos)
	dCurr := plane.signedDistance(curr.Pos)
	denom := dPrev - dCurr
	t := 0.5
	if math.Abs(denom) > eps {
		t = dPrev / denom
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	out := Vertex{
		Pos: lerp3(prev.Pos, curr.Pos, t),
	}
	if hasNormal {
		out.Normal = normalize(lerp3(prev.Normal, curr.Normal, t))
	}
	if hasUV {
		out.UV = lerp2(prev.UV, curr.UV, t)
	}
	if hasColor {
		out.Color = lerp4(prev.Color, curr.Color, t)
	}
	return out
}

func lerp3(a, b [3]float64, t float64) [3]float64 {
	return [3]float64{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func lerp2(a, b [2]float64, t float64) [2]float64 {
	return [2]float64{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

func lerp4(a, b [4]float64, t float64) [4]float64 {
	return [4]float64{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

func normalize(v [3]float64) [3]float64 {
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < eps {
		return v
	}
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}

// triangulateFan fan-triangulates a convex polygon with >= 3 vertices,
// dropping it entirely if it degenerated to fewer than 3 or has zero area.
func triangulateFan(poly []Vertex) []Triangle {
	if len(poly) < 3 {
		return nil
	}
	var out []Triangle
	for i := 1; i < len(poly)-1; i++ {
		tri := Triangle{V: [3]Vertex{poly[0], poly[i], poly[i+1]}}
		if triArea(tri) > eps*eps {
			out = append(out, tri)
		}
	}
	return out
}

func triArea(tri Triangle) float64 {
	a, b, c := tri.V[0].Pos, tri.V[1].Pos, tri.V[2].Pos
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// ToClipVertex builds a clip.Vertex from mesh attribute arrays for vertex i.
func ToClipVertex(m *mesh.IndexedMesh, i uint32) Vertex {
	p := m.Position(i)
	v := Vertex{Pos: [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}}
	if m.HasNormals() {
		n := m.Normal(i)
		v.Normal = [3]float64{float64(n[0]), float64(n[1]), float64(n[2])}
	}
	if m.HasUVs() {
		uv := m.UV(i)
		v.UV = [2]float64{float64(uv[0]), float64(uv[1])}
	}
	if m.HasColors() {
		c := m.Color(i)
		v.Color = [4]float64{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
	}
	return v
}
