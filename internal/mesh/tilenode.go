package mesh

// TileNode is a node of the tree C5 builds: a simplified mesh covering
// Bounds, the geometric error that simplification introduced, and up to 8
// children refining it. Leaf nodes (ChildCount == 0) carry GeometricError
// 0, matching the OGC 3D Tiles convention that leaves are exact.
type TileNode struct {
	Bounds          BoundingBox
	Mesh            *IndexedMesh
	Materials       *MaterialLibrary
	GeometricError  float64
	Children        [8]*TileNode
	ChildCount      int
	ContentURI      string // relative path of the GLB this node was written to
	Depth           int
}

// IsLeaf reports whether the node has no children.
func (n *TileNode) IsLeaf() bool { return n.ChildCount == 0 }

// Walk calls fn for n and every descendant, depth-first, pre-order.
func (n *TileNode) Walk(fn func(*TileNode)) {
	fn(n)
	for i := 0; i < n.ChildCount; i++ {
		n.Children[i].Walk(fn)
	}
}
