package ingest

import (
	"fmt"
	"os"

	"github.com/cobaltgray/go-plyfile"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// LoadPLY parses a Stanford PLY file (the format the teacher's own pipeline
// writes as an intermediate before draco encoding, see
// internal/io/std_consumer.go's writePlyFile) into an IndexedMesh. Unlike
// that point-only writer, a photogrammetry PLY also carries face lists and
// optionally normals/UVs/vertex colors, so LoadPLY reads the full vertex
// and face element set rather than points alone.
func LoadPLY(path string) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: open ply %s: %w", path, err)
	}
	defer f.Close()

	model, err := plyfile.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: decode ply %s: %w", path, err)
	}

	out := &mesh.IndexedMesh{MaterialIndex: -1}
	hasNormal := len(model.Vertices) > 0 && model.Vertices[0].HasNormal
	hasUV := len(model.Vertices) > 0 && model.Vertices[0].HasUV
	hasColor := len(model.Vertices) > 0 && model.Vertices[0].HasColor

	for _, v := range model.Vertices {
		out.Positions = append(out.Positions, float32(v.X), float32(v.Y), float32(v.Z))
		if hasNormal {
			out.Normals = append(out.Normals, float32(v.NX), float32(v.NY), float32(v.NZ))
		}
		if hasUV {
			out.UVs = append(out.UVs, float32(v.U), float32(v.V))
		}
		if hasColor {
			out.Colors = append(out.Colors,
				float32(v.R)/255, float32(v.G)/255, float32(v.B)/255, float32(v.A)/255)
		}
	}

	for _, face := range model.Faces {
		idxs := make([]uint32, len(face.Indices))
		for i, vi := range face.Indices {
			if vi < 0 || vi >= len(model.Vertices) {
				return nil, nil, fmt.Errorf("ingest: ply %s: face index %d out of range (%d vertices)", path, vi, len(model.Vertices))
			}
			idxs[i] = uint32(vi)
		}
		out.Indices = append(out.Indices, triangulateFaceIndices(idxs)...)
	}

	return out, nil, nil
}
