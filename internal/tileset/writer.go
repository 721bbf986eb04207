package tileset

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/ecopia-map/mesh2tiles/internal/glb"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
)

// Write walks node, writing content.glb for every node and a tileset.json
// for the root and every node with children, mirroring the teacher's
// StandardConsumer.doWork: write content first, then (if non-leaf or root)
// write the tileset document describing it and its children. transform is
// applied only at the tileset root (Open Question: transform is root-only
// and never propagated into child tiles, since every node already shares
// the same coordinate space post-georeferencing).
func (b *Builder) Write(node *mesh.TileNode, outDir string, transform *[16]float64) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("tileset: create output dir: %w", err)
	}
	if err := b.writeNodeContent(node, outDir, "", transform); err != nil {
		return err
	}
	return nil
}

// writeNodeContent recursively encodes every node's mesh to content.glb in
// outDir/relPath, and for the root or any node with children also writes the
// tileset.json describing it and its children. relPath accumulates the
// octant path ("0/3/7"/...) used both for the on-disk layout and the
// tileset.json content URIs. transform is non-nil only for the true root.
func (b *Builder) writeNodeContent(node *mesh.TileNode, outDir string, relPath string, transform *[16]float64) error {
	nodeDir := filepath.Join(outDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(nodeDir, 0o755); err != nil {
		return fmt.Errorf("tileset: create tile dir %s: %w", nodeDir, err)
	}

	data, err := glb.Encode(node.Mesh, node.Materials, glb.WriteOptions{
		TextureFormat:  b.cfg.TextureFormat,
		TextureQuality: b.cfg.TextureQuality,
	})
	if err != nil {
		b.recordFailure(relPath, "encode GLB content", err)
	} else {
		node.ContentURI = path.Join(relPath, "content.glb")
		if err := os.WriteFile(filepath.Join(nodeDir, "content.glb"), data, 0o644); err != nil {
			return fmt.Errorf("tileset: write content.glb at %q: %w", relPath, err)
		}
	}

	for i := 0; i < node.ChildCount; i++ {
		childRel := path.Join(relPath, itoa(octantOf(node, node.Children[i])))
		if err := b.writeNodeContent(node.Children[i], outDir, childRel, nil); err != nil {
			return err
		}
	}

	if node.ChildCount > 0 || relPath == "" {
		r := nodeToRoot(node)
		r.Transform = transform
		ts := Tileset{
			Asset:          Asset{Version: "1.1"},
			GeometricError: node.GeometricError,
			Root:           *r,
		}
		if err := writeJSON(filepath.Join(nodeDir, "tileset.json"), ts); err != nil {
			return err
		}
	}
	return nil
}

// nodeToRoot converts a TileNode and its children into the Root/Child JSON
// shape, refine always REPLACE per the specification's chosen refinement
// strategy.
func nodeToRoot(node *mesh.TileNode) *Root {
	root := &Root{
		Content:        Content{URI: "content.glb"},
		BoundingVolume: boxFromNode(node),
		GeometricError: node.GeometricError,
		Refine:         "REPLACE",
	}
	for i := 0; i < node.ChildCount; i++ {
		root.Children = append(root.Children, childFromNode(node.Children[i], itoa(octantOf(node, node.Children[i]))))
	}
	return root
}

func childFromNode(node *mesh.TileNode, childRel string) Child {
	var uri string
	if node.ChildCount > 0 {
		uri = path.Join(childRel, "tileset.json")
	} else {
		uri = path.Join(childRel, "content.glb")
	}
	c := Child{
		Content:        Content{URI: uri},
		BoundingVolume: boxFromNode(node),
		GeometricError: node.GeometricError,
		Refine:         "REPLACE",
	}
	return c
}

func boxFromNode(node *mesh.TileNode) BoundingVolume {
	return BoxFromBounds(node.Bounds.Center(), node.Bounds.HalfExtents())
}

func itoa(i int) string {
	return string(rune('0' + i))
}

// octantOf returns child's octant number within parent: the first octant
// whose box equals child's bounds, which on a zero-extent axis is the lower
// octant SplitMesh assigns that axis's triangles to.
func octantOf(parent, child *mesh.TileNode) int {
	for o := 0; o < 8; o++ {
		if parent.Bounds.Octant(o) == child.Bounds {
			return o
		}
	}
	return 0
}

func writeJSON(filePath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("tileset: marshal %s: %w", filePath, err)
	}
	return os.WriteFile(filePath, data, 0o644)
}
