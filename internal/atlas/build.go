package atlas

import (
	"github.com/golang/glog"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// minAtlasSize is the smallest atlas this package will try before doubling
// up toward maxAtlasSize in BuildNodeAtlas's fit search.
const minAtlasSize = 64

// BuildNodeAtlas builds a per-tile texture atlas for m: it detects m's UV
// islands, packs them with bleed padding sized off each island's own
// source-texture footprint, composites the cropped source texture into
// the packed layout, and remaps m's UVs in place (duplicating vertices
// that straddle an island boundary) — then returns a new single-material
// library this node's GLB should reference instead of the whole shared
// source library, so a tile's content carries only the atlas region its
// own geometry uses plus bleed, not the full original texture.
//
// ok is false (lib returned unchanged) when m has no UVs or no base color
// texture to crop, e.g. a vertex-colored mesh with no material.
func BuildNodeAtlas(m *mesh.IndexedMesh, lib *mesh.MaterialLibrary, maxAtlasSize int) (*mesh.MaterialLibrary, bool, error) {
	if lib == nil || !m.HasUVs() || m.MaterialIndex < 0 || m.MaterialIndex >= len(lib.Materials) {
		return lib, false, nil
	}
	mat := lib.Materials[m.MaterialIndex]
	if mat.BaseColorTexture == nil || *mat.BaseColorTexture < 0 || *mat.BaseColorTexture >= len(lib.Textures) {
		return lib, false, nil
	}
	tex := lib.Textures[*mat.BaseColorTexture]

	islands := DetectIslands(m)
	if len(islands) == 0 {
		return lib, false, nil
	}
	AssignBleed(islands, tex.Width, tex.Height)

	if maxAtlasSize <= 0 {
		maxAtlasSize = tex.Width
		if tex.Height > maxAtlasSize {
			maxAtlasSize = tex.Height
		}
	}

	atlasSize := minAtlasSize
	for atlasSize < maxAtlasSize && !fits(islands, atlasSize) {
		atlasSize *= 2
	}
	if atlasSize > maxAtlasSize {
		atlasSize = maxAtlasSize
	}
	if !PackIslands(islands, atlasSize) {
		glog.Warningf("atlas: %d islands do not all fit within texture_max_size %d; packing best-effort (some islands may overlap)", len(islands), maxAtlasSize)
	}

	composited := CompositeAtlas(&tex, islands, atlasSize)
	RemapUVs(m, islands, atlasSize)

	newTexIdx := 0
	newMat := mat
	newMat.BaseColorTexture = &newTexIdx
	// the normal/metallic-roughness maps (if any) addressed the old
	// library's UV layout; dropping them rather than leaving them
	// pointing at a now-out-of-range or mismatched-UV texture index.
	newMat.MetallicRoughnessTexture = nil
	newMat.NormalTexture = nil

	newLib := &mesh.MaterialLibrary{
		Materials: []mesh.Material{newMat},
		Textures: []mesh.Texture{{
			Data:     append([]byte(nil), composited.Pix...),
			Width:    atlasSize,
			Height:   atlasSize,
			MimeType: "image/png",
			Sampler:  tex.Sampler,
		}},
	}
	m.MaterialIndex = 0
	return newLib, true, nil
}

// fits reports whether islands pack into an atlasSize x atlasSize square,
// trying on copies so the real islands' Pack* fields are left untouched
// until the caller commits to a size.
func fits(islands []*mesh.UVIsland, atlasSize int) bool {
	trial := make([]*mesh.UVIsland, len(islands))
	for i, isl := range islands {
		cp := *isl
		trial[i] = &cp
	}
	return PackIslands(trial, atlasSize)
}
