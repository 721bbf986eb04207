package simplify

import "math"

// quadric is the symmetric 4x4 error matrix of Garland & Heckbert's QEM,
// stored as its 10 distinct upper-triangular entries. Summing the quadrics
// of every plane touching a vertex and evaluating it at a candidate
// collapse target gives that collapse's geometric error.
type quadric struct {
	a11, a12, a13, a14 float64
	a22, a23, a24      float64
	a33, a34           float64
	a44                float64
}

// planeQuadric builds the quadric for the plane through a, b, c (a single
// triangle's supporting plane), weighted by the triangle's area so larger
// triangles contribute proportionally more error.
func planeQuadric(a, b, c [3]float64) quadric {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx

	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length < 1e-12 {
		return quadric{}
	}
	area := length / 2
	nx, ny, nz = nx/length, ny/length, nz/length
	d := -(nx*a[0] + ny*a[1] + nz*a[2])

	return quadric{
		a11: nx * nx * area, a12: nx * ny * area, a13: nx * nz * area, a14: nx * d * area,
		a22: ny * ny * area, a23: ny * nz * area, a24: ny * d * area,
		a33: nz * nz * area, a34: nz * d * area,
		a44: d * d * area,
	}
}

func (q quadric) add(o quadric) quadric {
	return quadric{
		a11: q.a11 + o.a11, a12: q.a12 + o.a12, a13: q.a13 + o.a13, a14: q.a14 + o.a14,
		a22: q.a22 + o.a22, a23: q.a23 + o.a23, a24: q.a24 + o.a24,
		a33: q.a33 + o.a33, a34: q.a34 + o.a34,
		a44: q.a44 + o.a44,
	}
}

// evaluate computes v^T Q v for homogeneous point [x y z 1], the QEM error
// of placing a vertex at p under this accumulated quadric.
func (q quadric) evaluate(p [3]float64) float64 {
	x, y, z := p[0], p[1], p[2]
	return x*x*q.a11 + 2*x*y*q.a12 + 2*x*z*q.a13 + 2*x*q.a14 +
		y*y*q.a22 + 2*y*z*q.a23 + 2*y*q.a24 +
		z*z*q.a33 + 2*z*q.a34 +
		q.a44
}
