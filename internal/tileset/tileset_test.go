package tileset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

func denseCube(n int) *mesh.IndexedMesh {
	m := &mesh.IndexedMesh{MaterialIndex: -1}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			m.Positions = append(m.Positions, float32(x)/float32(n)*2-1, float32(y)/float32(n)*2-1, 0)
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

func TestBuildProducesLeafWhenUnderTriangleBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTrianglesPerTile = 1000
	cfg.SimplifySchedule = []SimplifyLevel{{Ratio: 1.0, LockBorder: true}}
	b := NewBuilder(cfg)

	m := denseCube(4)
	bounds := m.Bounds()
	root := b.Build(m, nil, bounds)

	if !root.IsLeaf() {
		t.Errorf("expected a leaf root for a small mesh, got %d children", root.ChildCount)
	}
	if root.GeometricError != 0 {
		t.Errorf("leaf GeometricError = %v, want 0", root.GeometricError)
	}
}

func TestBuildSplitsWhenOverTriangleBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTrianglesPerTile = 10
	cfg.MinTileSizeM = 0
	cfg.MaxDepth = 3
	cfg.SimplifySchedule = []SimplifyLevel{
		{Ratio: 0.5, LockBorder: true}, {Ratio: 0.5, LockBorder: true},
		{Ratio: 0.5, LockBorder: true}, {Ratio: 0.5, LockBorder: true},
	}
	b := NewBuilder(cfg)

	m := denseCube(10)
	bounds := m.Bounds()
	root := b.Build(m, nil, bounds)

	if root.IsLeaf() {
		t.Fatal("expected root to split for a mesh well over the triangle budget")
	}
	if root.GeometricError <= 0 {
		t.Errorf("non-leaf GeometricError = %v, want > 0", root.GeometricError)
	}
	root.Walk(func(n *mesh.TileNode) {
		if n.Depth > cfg.MaxDepth {
			t.Errorf("node at depth %d exceeds MaxDepth %d", n.Depth, cfg.MaxDepth)
		}
		if !n.IsLeaf() && n.GeometricError <= 0 {
			t.Errorf("non-leaf node at depth %d has non-positive GeometricError", n.Depth)
		}
	})
}

func TestScheduleLevelPadsWithRelaxedLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimplifySchedule = []SimplifyLevel{
		{Ratio: 1.0, LockBorder: false},
		{Ratio: 0.25, LockBorder: true},
	}
	b := NewBuilder(cfg)

	if got := b.scheduleLevel(0); got.Ratio != 1.0 || got.LockBorder {
		t.Errorf("scheduleLevel(0) = %+v, want {1.0 false}", got)
	}
	if got := b.scheduleLevel(1); got.Ratio != 0.25 || !got.LockBorder {
		t.Errorf("scheduleLevel(1) = %+v, want {0.25 true}", got)
	}
	if got := b.scheduleLevel(5); got != relaxedLevel {
		t.Errorf("scheduleLevel(5) = %+v, want %+v (padded with the relaxed level)", got, relaxedLevel)
	}
}

func TestWriteProducesValidTilesetJSON(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTrianglesPerTile = 20
	cfg.MinTileSizeM = 0
	cfg.MaxDepth = 2
	cfg.SimplifySchedule = []SimplifyLevel{
		{Ratio: 1.0, LockBorder: true}, {Ratio: 1.0, LockBorder: true}, {Ratio: 1.0, LockBorder: true},
	}
	b := NewBuilder(cfg)

	m := denseCube(6)
	bounds := m.Bounds()
	root := b.Build(m, nil, bounds)

	dir := t.TempDir()
	transform := &[16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if err := b.Write(root, dir, transform); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tileset.json"))
	if err != nil {
		t.Fatalf("reading tileset.json: %v", err)
	}
	var ts Tileset
	if err := json.Unmarshal(data, &ts); err != nil {
		t.Fatalf("tileset.json did not parse: %v", err)
	}
	if ts.Asset.Version != "1.1" {
		t.Errorf("Asset.Version = %q, want 1.1", ts.Asset.Version)
	}
	if ts.Root.Transform == nil {
		t.Error("root tileset.json is missing its transform")
	}

	if _, err := os.Stat(filepath.Join(dir, "content.glb")); err != nil {
		t.Errorf("root content.glb was not written: %v", err)
	}
}

func TestSummarizeCountsTilesAndTriangles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTrianglesPerTile = 10
	cfg.MinTileSizeM = 0
	cfg.MaxDepth = 2
	cfg.SimplifySchedule = []SimplifyLevel{{Ratio: 0.5, LockBorder: true}, {Ratio: 0.5, LockBorder: true}}
	b := NewBuilder(cfg)

	m := denseCube(10)
	bounds := m.Bounds()
	root := b.Build(m, nil, bounds)

	stats := Summarize(root)
	if stats.TileCount <= 1 {
		t.Errorf("TileCount = %d, want > 1 for a split tree", stats.TileCount)
	}
	if stats.LeafCount == 0 || stats.LeafCount > stats.TileCount {
		t.Errorf("LeafCount = %d, want in (0, %d]", stats.LeafCount, stats.TileCount)
	}
	if stats.TotalTriangles == 0 {
		t.Error("TotalTriangles = 0, want > 0")
	}
	if stats.String() == "" {
		t.Error("String() returned empty summary")
	}
}
