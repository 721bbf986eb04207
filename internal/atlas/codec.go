package atlas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/webp"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// DecodeTexture turns a source texture's raw file bytes (PNG, JPEG handled
// by image/jpeg's blank import in internal/ingest, or WebP) into a
// mesh.Texture with uncompressed RGBA pixel data, the common form
// CompositeAtlas and the rest of this package operate on. WebP is
// decode-only: source photogrammetry captures are occasionally delivered
// as WebP, but nothing in this pipeline re-encodes to it.
func DecodeTexture(data []byte, mimeType string) (*mesh.Texture, error) {
	var img image.Image
	var err error

	switch mimeType {
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("atlas: decode texture (%s): %w", mimeType, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}

	return &mesh.Texture{
		Data:     rgba.Pix,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: mimeType,
		Sampler:  mesh.DefaultSampler(),
	}, nil
}

// EncodePNG encodes img as PNG, the lossless format the atlas writer falls
// back to whenever the configured texture_format isn't a compressed GPU
// format the mesh2tiles glb writer understands.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("atlas: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
