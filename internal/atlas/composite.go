package atlas

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// CompositeAtlas draws every island's footprint from its source texture
// into a single atlasSize x atlasSize RGBA image at its packed location,
// replicating edge pixels outward into the bleed border so downstream
// mipmapping/compression doesn't smear in a neighboring island's color.
// golang.org/x/image/draw's BiLinear scaler resamples each island's native
// source-pixel footprint to its packed size (they rarely match once an
// island is repacked at a different scale); the border/corner replication
// loop is the only part this package hand-rolls.
func CompositeAtlas(tex *mesh.Texture, islands []*mesh.UVIsland, atlasSize int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))

	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		return dst
	}

	src := textureToRGBA(tex)

	for _, island := range islands {
		drawIsland(dst, src, island, atlasSize)
	}
	return dst
}

func textureToRGBA(tex *mesh.Texture) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	copy(img.Pix, tex.Data)
	return img
}

// drawIsland resamples the island's source UV footprint to its packed
// destination size and blits it there, then replicates the outermost
// row/column of drawn pixels into the surrounding bleed margin. The
// destination size is derived from PackScale (the same transform RemapUVs
// applies to the mesh's UVs), not copied at native source resolution: a
// repacked island's destination footprint almost never matches its source
// pixel dimensions once other islands share the atlas.
func drawIsland(dst, src *image.RGBA, island *mesh.UVIsland, atlasSize int) {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()

	srcMinX := int(island.UVMin[0] * float32(sw))
	srcMinY := int((1 - island.UVMax[1]) * float32(sh)) // UV v grows up, image y grows down
	srcMaxX := int(island.UVMax[0] * float32(sw))
	srcMaxY := int((1 - island.UVMin[1]) * float32(sh))
	srcRect := image.Rect(clampInt(srcMinX, 0, sw), clampInt(srcMinY, 0, sh), clampInt(srcMaxX, 0, sw), clampInt(srcMaxY, 0, sh))
	if srcRect.Dx() <= 0 || srcRect.Dy() <= 0 {
		return
	}

	dstW := int(island.Width() * island.PackScale * float32(atlasSize))
	dstH := int(island.Height() * island.PackScale * float32(atlasSize))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	dstX := int(island.PackX * float32(atlasSize))
	dstY := int(island.PackY * float32(atlasSize))
	dstRect := image.Rect(dstX, dstY, dstX+dstW, dstY+dstH)

	xdraw.BiLinear.Scale(dst, dstRect, src, srcRect, xdraw.Src, nil)

	bleedBorder(dst, dstRect, int(island.BleedPx))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// bleedBorder replicates the edges and corners of the just-drawn rect
// outward by border pixels, so sampling just outside the island's exact
// footprint (as bilinear filtering or compression block boundaries do)
// reads a plausible color instead of whatever a neighboring island left.
func bleedBorder(dst *image.RGBA, r image.Rectangle, border int) {
	if border <= 0 {
		return
	}
	b := dst.Bounds()

	for y := r.Min.Y; y < r.Max.Y; y++ {
		left := clampColor(dst, r.Min.X, y, b)
		right := clampColor(dst, r.Max.X-1, y, b)
		for dx := 1; dx <= border; dx++ {
			setColor(dst, r.Min.X-dx, y, left, b)
			setColor(dst, r.Max.X-1+dx, y, right, b)
		}
	}
	for x := r.Min.X - border; x < r.Max.X+border; x++ {
		top := clampColor(dst, clampInt(x, r.Min.X, r.Max.X-1), r.Min.Y, b)
		bottom := clampColor(dst, clampInt(x, r.Min.X, r.Max.X-1), r.Max.Y-1, b)
		for dy := 1; dy <= border; dy++ {
			setColor(dst, x, r.Min.Y-dy, top, b)
			setColor(dst, x, r.Max.Y-1+dy, bottom, b)
		}
	}
}

func clampColor(img *image.RGBA, x, y int, b image.Rectangle) color.RGBA {
	x = clampInt(x, b.Min.X, b.Max.X-1)
	y = clampInt(y, b.Min.Y, b.Max.Y-1)
	return img.RGBAAt(x, y)
}

func setColor(img *image.RGBA, x, y int, c color.RGBA, b image.Rectangle) {
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	img.SetRGBA(x, y, c)
}
