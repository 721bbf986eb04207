package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

const testOBJ = `# a unit quad split into two triangles
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
mtllib quad.mtl
usemtl panel
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`

const testMTL = `newmtl panel
Kd 0.8 0.2 0.2
d 1.0
Ns 96.0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadOBJBuildsIndexedMesh(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "quad.mtl", testMTL)
	objPath := writeFile(t, dir, "quad.obj", testOBJ)

	m, lib, err := LoadOBJ(objPath)
	if err != nil {
		t.Fatalf("LoadOBJ() error = %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
	if !m.HasNormals() || !m.HasUVs() {
		t.Error("expected both normals and UVs to be populated")
	}
	if lib == nil || len(lib.Materials) != 1 {
		t.Fatalf("expected one material from mtllib, got %v", lib)
	}
	if m.MaterialIndex != 0 {
		t.Errorf("MaterialIndex = %d, want 0", m.MaterialIndex)
	}
	want := [3]float32{0.8, 0.2, 0.2}
	got := lib.Materials[0].BaseColorFactor
	if got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("BaseColorFactor = %v, want %v (+alpha)", got, want)
	}
}

func TestLoadOBJTriangulatesNGon(t *testing.T) {
	dir := t.TempDir()
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nv 0.5 1.5 0\nf 1 2 3 4 5\n"
	objPath := writeFile(t, dir, "pentagon.obj", src)

	m, _, err := LoadOBJ(objPath)
	if err != nil {
		t.Fatalf("LoadOBJ() error = %v", err)
	}
	if m.TriangleCount() != 3 {
		t.Errorf("TriangleCount() = %d, want 3 (fan triangulation of a pentagon)", m.TriangleCount())
	}
}

func TestLoadOBJSupportsNegativeIndices(t *testing.T) {
	dir := t.TempDir()
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nf -3 -2 -1\n"
	objPath := writeFile(t, dir, "relative.obj", src)

	m, _, err := LoadOBJ(objPath)
	if err != nil {
		t.Fatalf("LoadOBJ() error = %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("TriangleCount() = %d, want 1", m.TriangleCount())
	}
}

func TestLoadOBJRejectsMissingMaterial(t *testing.T) {
	dir := t.TempDir()
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl ghost\nf 1 2 3\n"
	objPath := writeFile(t, dir, "broken.obj", src)

	if _, _, err := LoadOBJ(objPath); err == nil {
		t.Error("expected an error referencing an undeclared material, got nil")
	}
}
