package ingest

import (
	"fmt"
	"os"

	"github.com/ecopia-map/mesh2tiles/internal/glb"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// LoadGLTF reads a .glb or .gltf file into an IndexedMesh and its
// MaterialLibrary, delegating the binary/JSON container handling to
// internal/glb so the two directions of the glTF codec stay in one place.
func LoadGLTF(path string) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: read gltf %s: %w", path, err)
	}
	m, lib, err := glb.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: decode gltf %s: %w", path, err)
	}
	return m, lib, nil
}
