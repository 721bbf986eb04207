package tileset

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// Stats summarizes a built tile tree for the CLI's end-of-run log line.
type Stats struct {
	TileCount     int
	LeafCount     int
	TotalTriangles int
	MaxDepth      int
}

// Summarize walks root and tallies per-node counts.
func Summarize(root *mesh.TileNode) Stats {
	var s Stats
	root.Walk(func(n *mesh.TileNode) {
		s.TileCount++
		if n.IsLeaf() {
			s.LeafCount++
		}
		if n.Mesh != nil {
			s.TotalTriangles += n.Mesh.TriangleCount()
		}
		if n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
		}
	})
	return s
}

// String formats the summary using shopspring/decimal for the average
// triangles-per-tile figure, avoiding the float round-trip drift a plain
// fmt.Sprintf("%.2f", ...) would introduce across repeated runs — the same
// reason the teacher's go.mod carries decimal for its own point/area tallies.
func (s Stats) String() string {
	avg := decimal.NewFromInt(0)
	if s.TileCount > 0 {
		avg = decimal.NewFromInt(int64(s.TotalTriangles)).Div(decimal.NewFromInt(int64(s.TileCount))).Round(2)
	}
	return fmt.Sprintf("tiles=%d leaves=%d maxDepth=%d totalTriangles=%d avgTrianglesPerTile=%s",
		s.TileCount, s.LeafCount, s.MaxDepth, s.TotalTriangles, avg.String())
}
