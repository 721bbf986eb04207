package glb

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// Decode reads a GLB or glTF document from data and flattens its first
// mesh's first primitive into an IndexedMesh. Photogrammetry exports
// typically produce one mesh/one primitive per file, so multi-primitive
// documents are out of scope (see Non-goals); Decode returns an error for
// them rather than silently dropping data.
func Decode(data []byte) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, nil, fmt.Errorf("glb: decode: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *gltf.Document) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, nil, fmt.Errorf("glb: document has no mesh primitives")
	}
	if len(doc.Meshes) > 1 || len(doc.Meshes[0].Primitives) > 1 {
		return nil, nil, fmt.Errorf("glb: multi-primitive documents are not supported")
	}
	prim := doc.Meshes[0].Primitives[0]

	out := &mesh.IndexedMesh{MaterialIndex: -1}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, fmt.Errorf("glb: primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("glb: read positions: %w", err)
	}
	out.Positions = flatten3(positions)

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("glb: read normals: %w", err)
		}
		out.Normals = flatten3(normals)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("glb: read uvs: %w", err)
		}
		out.UVs = flatten2(uvs)
	}
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		colors, err := modeler.ReadColor(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("glb: read colors: %w", err)
		}
		out.Colors = flatten4Uint8(colors)
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("glb: read indices: %w", err)
		}
		out.Indices = indices
	} else {
		out.Indices = make([]uint32, out.VertexCount())
		for i := range out.Indices {
			out.Indices[i] = uint32(i)
		}
	}

	var lib *mesh.MaterialLibrary
	if prim.Material != nil {
		lib = &mesh.MaterialLibrary{}
		out.MaterialIndex = 0
		lib.Materials = append(lib.Materials, materialFromGltf(doc.Materials[*prim.Material]))
	}

	return out, lib, nil
}

func materialFromGltf(gm *gltf.Material) mesh.Material {
	out := mesh.DefaultMaterial()
	out.Name = gm.Name
	if gm.PBRMetallicRoughness != nil {
		pbr := gm.PBRMetallicRoughness
		if pbr.BaseColorFactor != nil {
			out.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			out.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			out.RoughnessFactor = *pbr.RoughnessFactor
		}
	}
	out.DoubleSided = gm.DoubleSided
	switch gm.AlphaMode {
	case gltf.AlphaBlend:
		out.AlphaMode = "BLEND"
	case gltf.AlphaMask:
		out.AlphaMode = "MASK"
	default:
		out.AlphaMode = "OPAQUE"
	}
	return out
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, 3*len(v))
	for _, e := range v {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}

func flatten2(v [][2]float32) []float32 {
	out := make([]float32, 0, 2*len(v))
	for _, e := range v {
		out = append(out, e[0], e[1])
	}
	return out
}

func flatten4(v [][4]float32) []float32 {
	out := make([]float32, 0, 4*len(v))
	for _, e := range v {
		out = append(out, e[0], e[1], e[2], e[3])
	}
	return out
}

func flatten4Uint8(v [][4]uint8) []float32 {
	out := make([]float32, 0, 4*len(v))
	for _, e := range v {
		out = append(out, float32(e[0])/255, float32(e[1])/255, float32(e[2])/255, float32(e[3])/255)
	}
	return out
}
