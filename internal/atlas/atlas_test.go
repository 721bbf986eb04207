package atlas

import (
	"testing"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// twoIslandMesh builds two disconnected quads, both at UV [0,0]-[1,1]: one
// at x in [0,1], one far away in position space (x in [10,11]), so they
// share no edges and form two separate islands.
func twoIslandMesh() *mesh.IndexedMesh {
	return &mesh.IndexedMesh{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
			10, 0, 0, 11, 0, 0, 11, 1, 0, 10, 1, 0,
		},
		UVs: []float32{
			0, 0, 1, 0, 1, 1, 0, 1,
			0, 0, 1, 0, 1, 1, 0, 1,
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7},
		MaterialIndex: -1,
	}
}

func TestDetectIslandsFindsDisconnectedComponents(t *testing.T) {
	m := twoIslandMesh()
	islands := DetectIslands(m)
	if len(islands) != 2 {
		t.Fatalf("DetectIslands() found %d islands, want 2", len(islands))
	}
	for _, isl := range islands {
		if len(isl.Triangles) != 2 {
			t.Errorf("island has %d triangles, want 2", len(isl.Triangles))
		}
	}
}

func TestDetectIslandsMergesSharedEdgeTriangles(t *testing.T) {
	m := &mesh.IndexedMesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	islands := DetectIslands(m)
	if len(islands) != 1 {
		t.Fatalf("DetectIslands() found %d islands, want 1 (triangles share an edge)", len(islands))
	}
}

func TestPackIslandsFitsWithinAtlas(t *testing.T) {
	m := twoIslandMesh()
	islands := DetectIslands(m)
	AssignBleed(islands, 512, 512)
	ok := PackIslands(islands, 256)
	if !ok {
		t.Fatal("PackIslands() failed to fit 2 unit-square islands into a 256x256 atlas")
	}
	for _, isl := range islands {
		if isl.PackX < 0 || isl.PackY < 0 || isl.PackScale <= 0 {
			t.Errorf("island packed with invalid placement: %+v", isl)
		}
	}
}

func TestPackIslandsReportsFailureWhenTooSmall(t *testing.T) {
	// many large islands cannot fit into a 4x4 atlas
	var islands []*mesh.UVIsland
	for i := 0; i < 20; i++ {
		islands = append(islands, &mesh.UVIsland{UVMin: [2]float32{0, 0}, UVMax: [2]float32{1, 1}, BleedPx: 2})
	}
	if PackIslands(islands, 4) {
		t.Error("PackIslands() reported success for islands that cannot fit")
	}
}

func TestRemapUVsStaysInUnitRange(t *testing.T) {
	m := twoIslandMesh()
	islands := DetectIslands(m)
	AssignBleed(islands, 512, 512)
	if !PackIslands(islands, 256) {
		t.Fatal("PackIslands() failed")
	}
	RemapUVs(m, islands, 256)

	for i := 0; i < len(m.UVs); i += 2 {
		u, v := m.UVs[i], m.UVs[i+1]
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Errorf("remapped UV (%v,%v) escapes [0,1]", u, v)
		}
	}
}

func TestRemapUVsDuplicatesVertexSharedAcrossIslands(t *testing.T) {
	// two triangles sharing vertex index 2 (same position+UV) but only that
	// one vertex, not a full edge, so DetectIslands keeps them in separate
	// islands. Vertex 2 must come out of RemapUVs duplicated, one copy per
	// island, since each needs a different packed UV.
	m := &mesh.IndexedMesh{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			10, 1, 0, 11, 1, 0,
		},
		UVs: []float32{
			0, 0, 1, 0, 1, 1,
			0, 0, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 2, 3, 4},
	}
	islands := DetectIslands(m)
	if len(islands) != 2 {
		t.Fatalf("test setup: got %d islands, want 2 triangles joined only at one vertex", len(islands))
	}
	AssignBleed(islands, 512, 512)
	if !PackIslands(islands, 256) {
		t.Fatal("PackIslands() failed")
	}
	beforeVerts := len(m.Positions) / 3
	RemapUVs(m, islands, 256)
	afterVerts := len(m.Positions) / 3
	if afterVerts <= beforeVerts {
		t.Errorf("RemapUVs() produced %d vertices from %d, want strictly more (shared vertex must duplicate)", afterVerts, beforeVerts)
	}
}

func TestBleedForIslandPixelsIncreasesWithSize(t *testing.T) {
	small := BleedForIslandPixels(50)
	medium := BleedForIslandPixels(150)
	large := BleedForIslandPixels(300)
	if !(small < medium && medium < large) {
		t.Errorf("BleedForIslandPixels not increasing: small=%v medium=%v large=%v", small, medium, large)
	}
}
