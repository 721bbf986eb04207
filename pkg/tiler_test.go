package pkg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/mesh2tiles/internal/tileset"
)

func TestMeshBaseNameStripsExtension(t *testing.T) {
	cases := map[string]string{
		"/data/capture.obj":  "capture",
		"tile.glb":           "tile",
		"./block/site.1.ply": "site.1",
	}
	for in, want := range cases {
		if got := meshBaseName(in); got != want {
			t.Errorf("meshBaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadMeshRejectsUnsupportedExtension(t *testing.T) {
	if _, _, err := loadMesh("scan.xyz"); err == nil {
		t.Error("expected an error for an unsupported extension, got nil")
	}
}

func TestGeoreferenceAndTileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "plot.obj")
	// a small quad near Rome, in WGS84 lon/lat/ellipsoidal-height "meters".
	src := "v 12.490 41.890 0\nv 12.491 41.890 0\nv 12.491 41.891 0\nv 12.490 41.891 0\nf 1 2 3 4\n"
	if err := os.WriteFile(objPath, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, lib, err := loadMesh(objPath)
	if err != nil {
		t.Fatalf("loadMesh() error = %v", err)
	}

	bounds, transform, err := georeference(m, 4326)
	if err != nil {
		t.Fatalf("georeference() error = %v", err)
	}
	if transform[15] != 1 {
		t.Errorf("transform bottom-right element = %v, want 1", transform[15])
	}

	cfg := tileset.DefaultConfig()
	cfg.SimplifySchedule = []tileset.SimplifyLevel{{Ratio: 1.0, LockBorder: true}}
	builder := tileset.NewBuilder(cfg)
	root := builder.Build(m, lib, bounds)

	outDir := filepath.Join(dir, "out")
	if err := builder.Write(root, outDir, &transform); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "tileset.json"))
	if err != nil {
		t.Fatalf("reading tileset.json: %v", err)
	}
	var ts tileset.Tileset
	if err := json.Unmarshal(data, &ts); err != nil {
		t.Fatalf("tileset.json did not parse: %v", err)
	}
	if ts.Root.Transform == nil {
		t.Error("expected the root tile to carry a transform")
	}
}
