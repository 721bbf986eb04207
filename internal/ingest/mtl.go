package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ecopia-map/mesh2tiles/internal/atlas"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// LoadMTL parses a Wavefront MTL material library, decoding any referenced
// diffuse/normal texture maps (map_Kd, map_Bump) into the library's Textures
// so the atlas repacker and GLB writer need not touch the filesystem again.
func LoadMTL(path string) (*mesh.MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open mtl %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	lib := &mesh.MaterialLibrary{}
	textureByPath := map[string]int{}
	var current *mesh.Material

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "newmtl":
			m := mesh.DefaultMaterial()
			m.Name = fields[1]
			lib.Materials = append(lib.Materials, m)
			current = &lib.Materials[len(lib.Materials)-1]
		case "Kd":
			if current == nil {
				break
			}
			c, err := parseFloat3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("ingest: mtl %s: Kd: %w", path, err)
			}
			current.BaseColorFactor[0] = c[0]
			current.BaseColorFactor[1] = c[1]
			current.BaseColorFactor[2] = c[2]
		case "d":
			if current == nil {
				break
			}
			alpha, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, fmt.Errorf("ingest: mtl %s: d: %w", path, err)
			}
			current.BaseColorFactor[3] = float32(alpha)
			if alpha < 1 {
				current.AlphaMode = "BLEND"
			}
		case "Ns":
			if current == nil {
				break
			}
			shininess, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return nil, fmt.Errorf("ingest: mtl %s: Ns: %w", path, err)
			}
			// Ns (Phong specular exponent, 0..1000) has no direct PBR
			// equivalent; approximate a roughness from it so imported
			// specular-workflow materials aren't left fully rough.
			current.RoughnessFactor = float32(1 - clamp01(shininess/1000))
		case "map_Kd":
			if current == nil {
				break
			}
			idx, err := resolveTexture(dir, fields[len(fields)-1], lib, textureByPath)
			if err != nil {
				return nil, fmt.Errorf("ingest: mtl %s: map_Kd: %w", path, err)
			}
			current.BaseColorTexture = &idx
		case "map_Bump", "bump":
			if current == nil {
				break
			}
			idx, err := resolveTexture(dir, fields[len(fields)-1], lib, textureByPath)
			if err != nil {
				return nil, fmt.Errorf("ingest: mtl %s: map_Bump: %w", path, err)
			}
			current.NormalTexture = &idx
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan mtl %s: %w", path, err)
	}
	return lib, nil
}

func resolveTexture(dir, relPath string, lib *mesh.MaterialLibrary, cache map[string]int) (int, error) {
	if idx, ok := cache[relPath]; ok {
		return idx, nil
	}
	full := filepath.Join(dir, relPath)
	data, err := readAll(full)
	if err != nil {
		return 0, err
	}
	tex, err := atlas.DecodeTexture(data, mimeTypeForExt(filepath.Ext(full)))
	if err != nil {
		return 0, err
	}
	idx := len(lib.Textures)
	lib.Textures = append(lib.Textures, *tex)
	cache[relPath] = idx
	return idx, nil
}

func mimeTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
