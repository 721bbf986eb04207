package octree

import (
	"testing"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

func cubeMesh() (*mesh.IndexedMesh, mesh.BoundingBox) {
	// two triangles spanning the full [-1,1]^3 box's XY face at z=0, one
	// wholly in octant 0..3 territory depending on X, crossing the Y=0
	// midplane so at least one triangle requires the slow path.
	m := &mesh.IndexedMesh{
		Positions: []float32{
			-1, -1, 0,
			1, -1, 0,
			1, 1, 0,
			-1, 1, 0,
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: -1,
	}
	box := mesh.BoundingBox{Min: [3]float64{-1, -1, -1}, Max: [3]float64{1, 1, 1}}
	return m, box
}

func TestSplitMeshConservesArea(t *testing.T) {
	m, box := cubeMesh()
	want := m.TriangleArea()

	children := SplitMesh(m, box)
	var got float64
	for _, c := range children {
		if c == nil {
			continue
		}
		got += c.TriangleArea()
	}

	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("total child area = %v, want %v", got, want)
	}
}

func TestSplitMeshChildrenStayWithinOctantBounds(t *testing.T) {
	m, box := cubeMesh()
	children := SplitMesh(m, box)

	for i, c := range children {
		if c == nil {
			continue
		}
		octBox := box.Octant(i)
		for v := 0; v < c.VertexCount(); v++ {
			p := c.Position(uint32(v))
			pos := [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
			for a := 0; a < 3; a++ {
				if pos[a] < octBox.Min[a]-1e-6 || pos[a] > octBox.Max[a]+1e-6 {
					t.Errorf("octant %d vertex %v escapes its bounding box %+v", i, pos, octBox)
				}
			}
		}
	}
}

func TestSplitMeshEmptyOctantsAreNil(t *testing.T) {
	m := &mesh.IndexedMesh{
		Positions: []float32{
			0.5, 0.5, 0.5,
			0.6, 0.5, 0.5,
			0.5, 0.6, 0.5,
		},
		Indices:       []uint32{0, 1, 2},
		MaterialIndex: -1,
	}
	box := mesh.BoundingBox{Min: [3]float64{-1, -1, -1}, Max: [3]float64{1, 1, 1}}
	children := SplitMesh(m, box)

	nonNil := 0
	for _, c := range children {
		if c != nil {
			nonNil++
		}
	}
	if nonNil != 1 {
		t.Errorf("expected exactly 1 non-nil octant for a fully-contained triangle, got %d", nonNil)
	}
}

func TestOctantsForBoundsWhollyInsideOneOctant(t *testing.T) {
	mid := [3]float64{0, 0, 0}
	got := octantsForBounds([3]float64{0.1, 0.1, 0.1}, [3]float64{0.5, 0.5, 0.5}, mid)
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("octantsForBounds() = %v, want [7]", got)
	}
}
