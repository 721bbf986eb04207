package tileset

// The JSON shapes below mirror the teacher's tileset.json writer
// (internal/io/std_consumer.go's Root/Child/Content/BoundingVolume/Tileset/
// Asset), generalized from a REGION bounding volume (a geographic lon/lat/
// height box only suited to point clouds already in WGS84) to an oriented
// BOX bounding volume, and bumped to 3D Tiles 1.1.

// Asset describes the tileset version per the 3D Tiles spec.
type Asset struct {
	Version string `json:"version"`
}

// Content points at a tile's payload, a .glb file.
type Content struct {
	URI string `json:"uri"`
}

// BoundingVolume holds a 12-element oriented box: center xyz followed by
// the half-length x/y/z axis vectors, per the 3D Tiles "box" volume.
type BoundingVolume struct {
	Box [12]float64 `json:"box"`
}

// Child is a non-root tile, referencing either another tileset.json
// (subtree boundary) or a .glb directly.
type Child struct {
	Content        Content        `json:"content"`
	BoundingVolume BoundingVolume `json:"boundingVolume"`
	GeometricError float64        `json:"geometricError"`
	Refine         string         `json:"refine,omitempty"`
	Children       []Child        `json:"children,omitempty"`
}

// Root is the tileset's top tile.
type Root struct {
	Content        Content        `json:"content"`
	BoundingVolume BoundingVolume `json:"boundingVolume"`
	GeometricError float64        `json:"geometricError"`
	Refine         string         `json:"refine"`
	Transform      *[16]float64   `json:"transform,omitempty"`
	Children       []Child        `json:"children,omitempty"`
}

// Tileset is the full tileset.json document.
type Tileset struct {
	Asset          Asset   `json:"asset"`
	GeometricError float64 `json:"geometricError"`
	Root           Root    `json:"root"`
}

// BoxFromBounds builds a BoundingVolume.Box from an axis-aligned bounding
// box, center + half-extents along each cardinal axis (3D Tiles allows an
// arbitrarily oriented box; ours is always axis-aligned since the octree
// splits on axis-aligned midplanes).
func BoxFromBounds(center, halfExtents [3]float64) BoundingVolume {
	return BoundingVolume{Box: [12]float64{
		center[0], center[1], center[2],
		halfExtents[0], 0, 0,
		0, halfExtents[1], 0,
		0, 0, halfExtents[2],
	}}
}
