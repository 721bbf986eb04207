package atlas

import (
	"sort"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// rect is a free region of the atlas the guillotine packer can place an
// island into.
type rect struct {
	x, y, w, h float32
}

// BleedForIslandPixels returns the bleed padding, in pixels, for an island
// whose largest dimension in the *source* texture's native pixel grid is
// maxPixelDim: the island-max-pixel-dim bleed table (small islands need
// the least padding, larger ones the most, since a large island samples a
// coarser region of the atlas per texel once repacked).
func BleedForIslandPixels(maxPixelDim float32) float32 {
	switch {
	case maxPixelDim <= 100:
		return 2
	case maxPixelDim <= 200:
		return 4
	default:
		return 5
	}
}

// AssignBleed sets BleedPx on every island from its UV footprint projected
// onto the source texture's texWidth x texHeight pixel grid, so PackIslands
// and CompositeAtlas each reserve/replicate padding sized to that specific
// island rather than a single tree-depth-keyed constant.
func AssignBleed(islands []*mesh.UVIsland, texWidth, texHeight int) {
	for _, island := range islands {
		maxDim := island.Width() * float32(texWidth)
		if h := island.Height() * float32(texHeight); h > maxDim {
			maxDim = h
		}
		island.BleedPx = BleedForIslandPixels(maxDim)
	}
}

// PackIslands lays out islands into an atlasSize x atlasSize square using a
// guillotine bin packer (split-on-placement, tightest-fit-first), setting
// each island's PackX/PackY/PackScale in [0,1] atlas-space. Each island
// reserves its own BleedPx (see AssignBleed) as extra border so the atlas
// can be mipmapped without neighboring islands bleeding into each other's
// interior. Returns false if the islands don't fit at atlasSize.
func PackIslands(islands []*mesh.UVIsland, atlasSize int) bool {
	if len(islands) == 0 {
		return true
	}

	order := make([]int, len(islands))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		ai, aj := islands[order[i]], islands[order[j]]
		return ai.Width()*ai.Height() > aj.Width()*aj.Height()
	})

	size := float32(atlasSize)
	free := []rect{{0, 0, size, size}}

	for _, idx := range order {
		island := islands[idx]
		w := island.Width()
		h := island.Height()
		if w <= 0 {
			w = 1e-6
		}
		if h <= 0 {
			h = 1e-6
		}

		// islands are square-packed at uniform scale to avoid aspect
		// distortion: the longer UV-space edge maps to 1 packed unit.
		longest := w
		if h > longest {
			longest = h
		}
		scale := 1.0 / longest
		bleedPx := island.BleedPx
		packedW := w*scale*size + 2*bleedPx
		packedH := h*scale*size + 2*bleedPx

		best := -1
		var bestRect rect
		for i, r := range free {
			if r.w >= packedW && r.h >= packedH {
				if best == -1 || (r.w*r.h) < (bestRect.w*bestRect.h) {
					best = i
					bestRect = r
				}
			}
		}
		if best == -1 {
			return false
		}

		island.PackX = (bestRect.x + bleedPx) / size
		island.PackY = (bestRect.y + bleedPx) / size
		island.PackScale = scale * (size - 2*bleedPx) / size

		free = splitRect(free, best, packedW, packedH)
	}
	return true
}

// splitRect removes free[used], places an item in its corner, and
// guillotine-splits the remainder into up to two new free rects.
func splitRect(free []rect, used int, w, h float32) []rect {
	r := free[used]
	free = append(free[:used], free[used+1:]...)

	if r.w-w > 0 {
		free = append(free, rect{x: r.x + w, y: r.y, w: r.w - w, h: h})
	}
	if r.h-h > 0 {
		free = append(free, rect{x: r.x, y: r.y + h, w: r.w, h: r.h - h})
	}
	return free
}
