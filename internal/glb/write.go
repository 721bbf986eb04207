// Package glb wraps github.com/qmuntal/gltf and its modeler helper to
// encode/decode the GLB 2.0 binary container 3D Tiles content uses,
// following the accessor-writing pattern a minimal glTF exporter in the
// corpus establishes (build a gltf.Document, use modeler.Write* to push
// attribute buffers, then a binary gltf.Encoder / gltf.Decoder).
package glb

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// WriteOptions controls how a tile node's mesh is encoded to GLB.
type WriteOptions struct {
	// Use32BitIndices forces a uint32 index accessor even when the vertex
	// count would fit in uint16; C5 leaves it false, and Encode switches to
	// uint32 on its own above 65535 vertices.
	Use32BitIndices bool

	// TextureFormat selects the image codec a material's textures are
	// written with: "png" (default), "webp", "ktx2", or "none" (factors
	// only, no image bytes at all — the smallest possible content.glb).
	TextureFormat string
	// TextureQuality is the 0-100 quality dial; for every TextureFormat a
	// value below 100 downsamples the texture resolution before encoding
	// (see scaleForQuality).
	TextureQuality int
}

func (o WriteOptions) textureFormat() string {
	if o.TextureFormat == "" {
		return "png"
	}
	return o.TextureFormat
}

// Encode builds a single-primitive, single-mesh GLB document from m and
// its material library, returning the encoded binary bytes.
func Encode(m *mesh.IndexedMesh, lib *mesh.MaterialLibrary, opts WriteOptions) ([]byte, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "mesh2tiles"

	positions := toVec3(m.Positions)
	posAccessor := modeler.WritePosition(doc, positions)

	attrs := map[string]uint32{
		gltf.POSITION: uint32(posAccessor),
	}
	if m.HasNormals() {
		attrs[gltf.NORMAL] = uint32(modeler.WriteNormal(doc, toVec3(m.Normals)))
	}
	if m.HasUVs() {
		attrs[gltf.TEXCOORD_0] = uint32(modeler.WriteTextureCoord(doc, toVec2(m.UVs)))
	}
	if m.HasColors() {
		attrs[gltf.COLOR_0] = uint32(modeler.WriteColor(doc, toVec4(m.Colors)))
	}

	vertexCount := m.VertexCount()
	use32 := opts.Use32BitIndices || vertexCount > 65535
	var indicesAccessor uint32
	if use32 {
		indicesAccessor = modeler.WriteIndices(doc, m.Indices)
	} else {
		u16 := make([]uint16, len(m.Indices))
		for i, v := range m.Indices {
			u16[i] = uint16(v)
		}
		indicesAccessor = modeler.WriteIndices(doc, u16)
	}

	prim := &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(indicesAccessor),
	}

	if lib != nil && m.MaterialIndex >= 0 && m.MaterialIndex < len(lib.Materials) {
		matIdx, err := writeMaterial(doc, lib, m.MaterialIndex, opts)
		if err != nil {
			return nil, err
		}
		prim.Material = gltf.Index(uint32(matIdx))
	}

	gltfMesh := &gltf.Mesh{Name: "tile", Primitives: []*gltf.Primitive{prim}}
	doc.Meshes = []*gltf.Mesh{gltfMesh}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("glb: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMaterial(doc *gltf.Document, lib *mesh.MaterialLibrary, idx int, opts WriteOptions) (int, error) {
	m := lib.Materials[idx]
	gm := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &m.BaseColorFactor,
			MetallicFactor:  gltf.Float(m.MetallicFactor),
			RoughnessFactor: gltf.Float(m.RoughnessFactor),
		},
		DoubleSided: m.DoubleSided,
	}
	switch m.AlphaMode {
	case "BLEND":
		gm.AlphaMode = gltf.AlphaBlend
	case "MASK":
		gm.AlphaMode = gltf.AlphaMask
	default:
		gm.AlphaMode = gltf.AlphaOpaque
	}

	// texture_format=none keeps only the material's scalar factors: no
	// image bytes are written at all, the smallest possible content.glb
	// for a caller that doesn't need per-tile color detail.
	if opts.textureFormat() == "none" {
		doc.Materials = append(doc.Materials, gm)
		return len(doc.Materials) - 1, nil
	}

	if m.BaseColorTexture != nil {
		texIdx, err := writeTexture(doc, lib, *m.BaseColorTexture, opts)
		if err != nil {
			return 0, err
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: uint32(texIdx)}
	}
	if m.MetallicRoughnessTexture != nil {
		texIdx, err := writeTexture(doc, lib, *m.MetallicRoughnessTexture, opts)
		if err != nil {
			return 0, err
		}
		gm.PBRMetallicRoughness.MetallicRoughnessTexture = &gltf.TextureInfo{Index: uint32(texIdx)}
	}
	if m.NormalTexture != nil {
		texIdx, err := writeTexture(doc, lib, *m.NormalTexture, opts)
		if err != nil {
			return 0, err
		}
		gm.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(uint32(texIdx))}
	}

	doc.Materials = append(doc.Materials, gm)
	return len(doc.Materials) - 1, nil
}

func writeTexture(doc *gltf.Document, lib *mesh.MaterialLibrary, texIdx int, opts WriteOptions) (int, error) {
	tex := lib.Textures[texIdx]
	encoded, mimeType, err := encodeTextureForFormat(tex, opts)
	if err != nil {
		return 0, err
	}

	bufferViewIdx := modeler.WriteBufferView(doc, gltf.TargetNone, encoded)
	imgIdx := len(doc.Images)
	img := &gltf.Image{
		MimeType:   mimeType,
		BufferView: gltf.Index(uint32(bufferViewIdx)),
	}
	doc.Images = append(doc.Images, img)

	samplerIdx := len(doc.Samplers)
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		WrapS:     gltf.WrappingMode(tex.Sampler.WrapS),
		WrapT:     gltf.WrappingMode(tex.Sampler.WrapT),
		MagFilter: gltf.MagFilter(tex.Sampler.MagFilter),
		MinFilter: gltf.MinFilter(tex.Sampler.MinFilter),
	})

	gTexIdx := len(doc.Textures)
	gTex := &gltf.Texture{
		Source:  gltf.Index(uint32(imgIdx)),
		Sampler: gltf.Index(uint32(samplerIdx)),
	}
	if mimeType == ktx2MimeType {
		// KHR_texture_basisu replaces the core source/mimeType pair with an
		// extension-addressed image for codecs core glTF 2.0 doesn't know;
		// declaring it both per-texture and at the document level matches
		// how qmuntal/gltf's other KHR_* extensions are wired (an
		// extension map keyed by name at both the object and document
		// scope, the document scope listing which extensions appear at
		// all so a loader can bail early if it can't handle one).
		gTex.Extensions = gltf.Extensions{
			"KHR_texture_basisu": map[string]interface{}{"source": imgIdx},
		}
		addExtensionUsed(doc, "KHR_texture_basisu")
	}
	doc.Textures = append(doc.Textures, gTex)
	return gTexIdx, nil
}

func addExtensionUsed(doc *gltf.Document, name string) {
	for _, e := range doc.ExtensionsUsed {
		if e == name {
			return
		}
	}
	doc.ExtensionsUsed = append(doc.ExtensionsUsed, name)
	doc.ExtensionsRequired = append(doc.ExtensionsRequired, name)
}

func toVec3(flat []float32) [][3]float32 {
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}

func toVec2(flat []float32) [][2]float32 {
	out := make([][2]float32, len(flat)/2)
	for i := range out {
		out[i] = [2]float32{flat[2*i], flat[2*i+1]}
	}
	return out
}

func toVec4(flat []float32) [][4]float32 {
	out := make([][4]float32, len(flat)/4)
	for i := range out {
		out[i] = [4]float32{flat[4*i], flat[4*i+1], flat[4*i+2], flat[4*i+3]}
	}
	return out
}
