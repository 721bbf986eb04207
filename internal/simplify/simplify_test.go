package simplify

import (
	"testing"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// gridMesh builds an n x n grid of unit quads (2 triangles each) on the
// z=0 plane, a regular enough mesh to exercise repeated edge collapse.
func gridMesh(n int) *mesh.IndexedMesh {
	m := &mesh.IndexedMesh{MaterialIndex: -1}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.Positions = append(m.Positions, float32(x), float32(y), 0)
		}
	}
	idx := func(x, y int) uint32 { return uint32(y*(n+1) + x) }
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a, b, c, d := idx(x, y), idx(x+1, y), idx(x+1, y+1), idx(x, y+1)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m
}

func TestSimplifyReducesTriangleCount(t *testing.T) {
	m := gridMesh(8)
	originalCount := m.TriangleCount()

	out := Simplify(m, Options{TargetRatio: 0.25})
	if out.TriangleCount() >= originalCount {
		t.Errorf("TriangleCount() = %d, want fewer than %d", out.TriangleCount(), originalCount)
	}
	if out.TriangleCount() == 0 {
		t.Error("Simplify produced an empty mesh")
	}
}

func TestSimplifyRatioOneIsNearlyNoOp(t *testing.T) {
	m := gridMesh(4)
	originalCount := m.TriangleCount()
	out := Simplify(m, Options{TargetRatio: 1.0})
	if out.TriangleCount() != originalCount {
		t.Errorf("TriangleCount() = %d, want unchanged %d at ratio 1.0", out.TriangleCount(), originalCount)
	}
}

func TestSimplifyPreservesApproximateArea(t *testing.T) {
	m := gridMesh(10)
	want := m.TriangleArea()
	out := Simplify(m, Options{TargetRatio: 0.3})
	got := out.TriangleArea()

	// QEM collapse on a flat grid should conserve area very closely since
	// every vertex lies on a shared plane.
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("TriangleArea() = %v, want %v (original area, flat mesh)", got, want)
	}
}

func TestSimplifyLockBorderKeepsBoundaryVertices(t *testing.T) {
	m := gridMesh(6)
	out := Simplify(m, Options{TargetRatio: 0.1, LockBorder: true})

	boundary := boundaryBounds(m)
	gotBoundary := boundaryBounds(out)
	if gotBoundary != boundary {
		t.Errorf("LockBorder changed the mesh's outer boundary: got %+v, want %+v", gotBoundary, boundary)
	}
}

func boundaryBounds(m *mesh.IndexedMesh) mesh.BoundingBox {
	return m.Bounds()
}

func TestSimplifyEmptyMeshIsNoOp(t *testing.T) {
	m := &mesh.IndexedMesh{MaterialIndex: -1}
	out := Simplify(m, Options{TargetRatio: 0.5})
	if out.TriangleCount() != 0 {
		t.Errorf("TriangleCount() = %d, want 0 for an empty input mesh", out.TriangleCount())
	}
}
