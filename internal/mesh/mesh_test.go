package mesh

import "testing"

func unitQuad() *IndexedMesh {
	return &IndexedMesh{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: -1,
	}
}

func TestIndexedMeshCounts(t *testing.T) {
	m := unitQuad()
	if got := m.VertexCount(); got != 4 {
		t.Errorf("VertexCount() = %d, want 4", got)
	}
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("TriangleCount() = %d, want 2", got)
	}
}

func TestIndexedMeshTriangleArea(t *testing.T) {
	m := unitQuad()
	if got := m.TriangleArea(); got != 1 {
		t.Errorf("TriangleArea() = %v, want 1", got)
	}
}

func TestIndexedMeshBounds(t *testing.T) {
	m := unitQuad()
	b := m.Bounds()
	want := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 0}}
	if b != want {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
}

func TestBoundingBoxOctantPartitionsSpace(t *testing.T) {
	b := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{2, 2, 2}}
	mid := b.Mid()
	if mid != [3]float64{1, 1, 1} {
		t.Fatalf("Mid() = %v, want {1 1 1}", mid)
	}
	for i := 0; i < 8; i++ {
		o := b.Octant(i)
		if o.Min[0] > o.Max[0] || o.Min[1] > o.Max[1] || o.Min[2] > o.Max[2] {
			t.Errorf("octant %d is degenerate: %+v", i, o)
		}
		// every octant must nest inside the parent box
		for a := 0; a < 3; a++ {
			if o.Min[a] < b.Min[a] || o.Max[a] > b.Max[a] {
				t.Errorf("octant %d escapes parent bounds on axis %d: %+v", i, a, o)
			}
		}
	}
}

func TestBoundingBoxOctantsAreDistinct(t *testing.T) {
	b := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{2, 2, 2}}
	seen := map[BoundingBox]bool{}
	for i := 0; i < 8; i++ {
		o := b.Octant(i)
		if seen[o] {
			t.Errorf("octant %d duplicates a previous octant", i)
		}
		seen[o] = true
	}
}

func TestDedupKeyCollapsesCloseVertices(t *testing.T) {
	a := NewDedupKey([3]float32{1, 2, 3}, [3]float32{}, false, [2]float32{}, false)
	b := NewDedupKey([3]float32{1.0000001, 2, 3}, [3]float32{}, false, [2]float32{}, false)
	if a != b {
		t.Errorf("near-identical positions produced different keys: %+v vs %+v", a, b)
	}
}

func TestDedupKeyDistinguishesDistinctVertices(t *testing.T) {
	a := NewDedupKey([3]float32{1, 2, 3}, [3]float32{}, false, [2]float32{}, false)
	b := NewDedupKey([3]float32{1, 2, 3.01}, [3]float32{}, false, [2]float32{}, false)
	if a == b {
		t.Errorf("distinct positions collapsed to the same key: %+v", a)
	}
}

func TestTileNodeWalkVisitsAllDescendants(t *testing.T) {
	leaf1 := &TileNode{Depth: 1}
	leaf2 := &TileNode{Depth: 1}
	root := &TileNode{Depth: 0, ChildCount: 2}
	root.Children[0] = leaf1
	root.Children[1] = leaf2

	var visited []*TileNode
	root.Walk(func(n *TileNode) { visited = append(visited, n) })

	if len(visited) != 3 {
		t.Fatalf("Walk visited %d nodes, want 3", len(visited))
	}
	if visited[0] != root || visited[1] != leaf1 || visited[2] != leaf2 {
		t.Errorf("Walk order = %v, want pre-order root,leaf1,leaf2", visited)
	}
}
