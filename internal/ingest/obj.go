// Package ingest loads the source mesh formats a photogrammetry capture may
// arrive in (OBJ+MTL, glTF/GLB, PLY) into the internal/mesh.IndexedMesh the
// rest of the pipeline operates on. The teacher reads a single LAS point
// stream through third_party/lasread; ingest generalizes that "one loader
// per source format, one IndexedMesh out" shape across the mesh formats
// photogrammetry tools actually export.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// cornerKey identifies one OBJ face-corner by its raw v/vt/vn index triple
// (1-based as written in the file; 0 means absent), so repeated corners
// across faces share a single output vertex instead of duplicating it.
type cornerKey struct {
	v, t, n int
}

// LoadOBJ parses a Wavefront OBJ file into an IndexedMesh, resolving any
// mtllib directive into a MaterialLibrary. OBJ has no native attribute
// indexing (position/uv/normal each carry their own index), so LoadOBJ
// rebuilds a single shared index per unique v/vt/vn corner as it scans.
func LoadOBJ(path string) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: open obj %s: %w", path, err)
	}
	defer f.Close()

	var positions, normals [][3]float32
	var uvs [][2]float32

	out := &mesh.IndexedMesh{MaterialIndex: -1}
	var lib *mesh.MaterialLibrary
	materialByName := map[string]int{}
	corners := map[cornerKey]uint32{}

	dir := filepath.Dir(path)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseFloat3(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("ingest: obj %s:%d: %w", path, lineNo, err)
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseFloat3(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("ingest: obj %s:%d: %w", path, lineNo, err)
			}
			normals = append(normals, n)
		case "vt":
			uv, err := parseFloat2(fields[1:])
			if err != nil {
				return nil, nil, fmt.Errorf("ingest: obj %s:%d: %w", path, lineNo, err)
			}
			uvs = append(uvs, uv)
		case "mtllib":
			mtlPath := filepath.Join(dir, fields[1])
			loaded, err := LoadMTL(mtlPath)
			if err != nil {
				return nil, nil, fmt.Errorf("ingest: obj %s:%d: %w", path, lineNo, err)
			}
			lib = loaded
			for i, m := range lib.Materials {
				materialByName[m.Name] = i
			}
		case "usemtl":
			idx, ok := materialByName[fields[1]]
			if !ok {
				return nil, nil, fmt.Errorf("ingest: obj %s:%d: usemtl %q not declared in mtllib", path, lineNo, fields[1])
			}
			out.MaterialIndex = idx
		case "f":
			idxs := make([]uint32, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				key, err := parseCorner(corner, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, nil, fmt.Errorf("ingest: obj %s:%d: %w", path, lineNo, err)
				}
				vi, ok := corners[key]
				if !ok {
					vi = uint32(len(out.Positions) / 3)
					corners[key] = vi
					out.Positions = append(out.Positions, positions[key.v-1][0], positions[key.v-1][1], positions[key.v-1][2])
					if key.n > 0 {
						out.Normals = append(out.Normals, normals[key.n-1][0], normals[key.n-1][1], normals[key.n-1][2])
					}
					if key.t > 0 {
						out.UVs = append(out.UVs, uvs[key.t-1][0], uvs[key.t-1][1])
					}
				}
				idxs = append(idxs, vi)
			}
			out.Indices = append(out.Indices, triangulateFaceIndices(idxs)...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("ingest: scan obj %s: %w", path, err)
	}

	if len(out.Normals) > 0 && len(out.Normals) != len(out.Positions) {
		out.Normals = nil // mixed presence across corners: drop rather than misalign
	}
	if len(out.UVs) > 0 && len(out.UVs)/2 != len(out.Positions)/3 {
		out.UVs = nil
	}

	return out, lib, nil
}

// triangulateFaceIndices fans an n-gon face (n >= 3) into triangles around
// its first vertex, the same assumption the OBJ format's authors make for
// convex polygonal faces.
func triangulateFaceIndices(corners []uint32) []uint32 {
	if len(corners) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(corners)-2)*3)
	for i := 1; i < len(corners)-1; i++ {
		out = append(out, corners[0], corners[i], corners[i+1])
	}
	return out
}

// parseCorner parses an OBJ face-corner token ("v", "v/vt", "v//vn" or
// "v/vt/vn"), resolving negative (relative-to-end) indices per the OBJ spec.
func parseCorner(token string, nv, nt, nn int) (cornerKey, error) {
	parts := strings.Split(token, "/")
	var key cornerKey
	var err error
	if key.v, err = resolveIndex(parts[0], nv); err != nil {
		return key, fmt.Errorf("vertex index %q: %w", token, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.t, err = resolveIndex(parts[1], nt); err != nil {
			return key, fmt.Errorf("uv index %q: %w", token, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.n, err = resolveIndex(parts[2], nn); err != nil {
			return key, fmt.Errorf("normal index %q: %w", token, err)
		}
	}
	return key, nil
}

func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return count + n + 1, nil
	}
	return n, nil
}

func parseFloat3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseFloat2(fields []string) ([2]float32, error) {
	var v [2]float32
	if len(fields) < 2 {
		return v, fmt.Errorf("expected 2 components, got %d", len(fields))
	}
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

// readAll is a small helper the MTL texture loader uses to pull a sidecar
// image file's bytes for DecodeTexture.
func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
