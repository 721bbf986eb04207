package ingest

// Blank-imported so image.Decode (used by atlas.DecodeTexture for any
// texture map referenced with a MTL map_Kd/map_Bump directive) recognizes
// PNG and JPEG source images in addition to the WebP codec atlas wires in
// directly.
import (
	_ "image/jpeg"
	_ "image/png"
)
