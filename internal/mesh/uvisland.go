package mesh

// UVIsland is a connected component of triangles in UV space, the unit the
// atlas repacker detects, packs and remaps independently.
type UVIsland struct {
	// Triangles holds indices into the owning mesh's Indices/3, i.e. the
	// triangle indices (not vertex indices) belonging to this island.
	Triangles []int

	// UVMin/UVMax is the island's bounding box in the source UV space,
	// computed before packing.
	UVMin [2]float32
	UVMax [2]float32

	// PackX/PackY/PackScale describe the affine transform applied to remap
	// the island from its source UV space into the shared atlas: remapped
	// = (uv - UVMin) * PackScale + (PackX, PackY), both in [0,1] atlas space.
	PackX, PackY, PackScale float32

	// BleedPx is the padding, in atlas pixels, reserved around this island
	// when packing and composited with edge-replicated color. Sized per
	// island from its own source-texture footprint (see
	// atlas.BleedForIslandPixels), not a single constant shared by every
	// island in the atlas.
	BleedPx float32
}

// Width returns the island's UV-space width.
func (u *UVIsland) Width() float32 { return u.UVMax[0] - u.UVMin[0] }

// Height returns the island's UV-space height.
func (u *UVIsland) Height() float32 { return u.UVMax[1] - u.UVMin[1] }
