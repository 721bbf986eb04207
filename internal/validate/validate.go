// Package validate walks a written tileset tree and checks that every
// tileset.json parses, every content.glb it references is a parseable GLB
// mesh, and each tile's declared bounding volume actually encloses its
// content's geometry. It is grounded on the teacher's TilerVerify
// (pkg/tiler_verify.go): read a file back in, log progress per tile, and
// report invalid records rather than aborting on the first one.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/ecopia-map/mesh2tiles/internal/glb"
	"github.com/ecopia-map/mesh2tiles/internal/tileset"
)

// Result summarizes one validation pass: how many tiles were visited and
// every problem found along the way. A non-empty Errors does not stop the
// walk early, mirroring the teacher's "log and continue" verification loop.
type Result struct {
	TilesetsChecked int
	ContentsChecked int
	Errors          []error
}

// OK reports whether the walk found no problems.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Errorf(format, args...))
}

// Tileset walks the tileset.json at rootPath and every subtree it
// references, validating each tile's content.glb and bounding volume.
func Tileset(rootPath string) (*Result, error) {
	res := &Result{}
	if err := walkTilesetFile(rootPath, res); err != nil {
		return res, err
	}
	glog.Infof("validate: checked %d tileset(s), %d content file(s), %d error(s)",
		res.TilesetsChecked, res.ContentsChecked, len(res.Errors))
	return res, nil
}

func walkTilesetFile(jsonPath string, res *Result) error {
	glog.Infoln("> validating", jsonPath)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("validate: read %s: %w", jsonPath, err)
	}
	var ts tileset.Tileset
	if err := json.Unmarshal(data, &ts); err != nil {
		return fmt.Errorf("validate: parse %s: %w", jsonPath, err)
	}
	res.TilesetsChecked++

	if ts.Asset.Version == "" {
		res.fail("%s: missing asset.version", jsonPath)
	}
	if ts.Root.Refine != "REPLACE" && ts.Root.Refine != "ADD" {
		res.fail("%s: root has unrecognized refine %q", jsonPath, ts.Root.Refine)
	}

	dir := filepath.Dir(jsonPath)
	return walkTile(dir, ts.Root.Content.URI, ts.Root.BoundingVolume, ts.Root.Children, res)
}

// walkTile validates a single tile's content (a .glb, or a nested
// tileset.json subtree boundary) and recurses into its children.
func walkTile(dir string, contentURI string, bv tileset.BoundingVolume, children []tileset.Child, res *Result) error {
	if filepath.Ext(contentURI) == ".json" {
		if err := walkTilesetFile(filepath.Join(dir, contentURI), res); err != nil {
			return err
		}
	} else if contentURI != "" {
		if err := validateContent(filepath.Join(dir, contentURI), bv, res); err != nil {
			return err
		}
	}

	for _, child := range children {
		childDir := filepath.Dir(filepath.Join(dir, child.Content.URI))
		if err := walkTile(childDir, filepath.Base(child.Content.URI), child.BoundingVolume, child.Children, res); err != nil {
			return err
		}
	}
	return nil
}

func validateContent(glbPath string, bv tileset.BoundingVolume, res *Result) error {
	data, err := os.ReadFile(glbPath)
	if err != nil {
		res.fail("%s: content file missing or unreadable: %v", glbPath, err)
		return nil
	}
	m, _, err := glb.Decode(data)
	if err != nil {
		res.fail("%s: not a parseable GLB: %v", glbPath, err)
		return nil
	}
	res.ContentsChecked++

	if m.TriangleCount() == 0 {
		res.fail("%s: mesh has zero triangles", glbPath)
	}

	bounds := m.Bounds()
	center, half := bounds.Center(), bounds.HalfExtents()
	for i := 0; i < 3; i++ {
		lo, hi := bv.Box[i]-bv.Box[3+i*4], bv.Box[i]+bv.Box[3+i*4]
		if center[i]-half[i] < lo-1e-3 || center[i]+half[i] > hi+1e-3 {
			res.fail("%s: content geometry escapes its declared bounding volume on axis %d", glbPath, i)
			break
		}
	}
	return nil
}
