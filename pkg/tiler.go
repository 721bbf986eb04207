// Package pkg wires the mesh2tiles pipeline: ingest a mesh, georeference its
// vertices into a local ENU frame, hand the result to the tileset builder,
// and write the resulting tileset.json/GLB tree. The one-orchestrator-per-
// subcommand shape (Tiler for `tile`, Validator for `validate`) is grounded
// on the teacher's ITiler interface and its TilerIndex/TilerVerify split.
package pkg

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/ecopia-map/mesh2tiles/internal/georef"
	"github.com/ecopia-map/mesh2tiles/internal/ingest"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
	"github.com/ecopia-map/mesh2tiles/internal/tiler"
	"github.com/ecopia-map/mesh2tiles/internal/tileset"
	"github.com/ecopia-map/mesh2tiles/tools"
)

// ITiler runs a configured subcommand to completion, matching the teacher's
// single-method orchestrator interface.
type ITiler interface {
	RunTiler(opts *tiler.TilerOptions) error
}

// Tiler implements the `tile` subcommand: ingest, georeference, build, write.
type Tiler struct {
	fileFinder tools.FileFinder
}

// NewTiler builds a Tiler using fileFinder to resolve opts.Input into the
// concrete mesh files to process.
func NewTiler(fileFinder tools.FileFinder) ITiler {
	return &Tiler{fileFinder: fileFinder}
}

// RunTiler processes every mesh file opts resolves to, writing one tileset
// under opts.TileOptions.Output/<mesh-basename>/ per input file, mirroring
// the teacher's RunTiler loop over GetLasFilesToProcess.
func (t *Tiler) RunTiler(opts *tiler.TilerOptions) error {
	glog.Infoln("Preparing list of files to process...")

	meshFiles := t.fileFinder.GetMeshFilesToProcess(opts)
	if len(meshFiles) == 0 {
		return fmt.Errorf("tiler: no mesh files found for input %q", opts.Input)
	}
	for i, f := range meshFiles {
		glog.Infof("mesh_file path %d [%s]", i+1, f)
	}

	for i, filePath := range meshFiles {
		tools.LogOutput(fmt.Sprintf("Processing file %d/%d", i+1, len(meshFiles)))
		if err := t.processMeshFile(filePath, opts); err != nil {
			return fmt.Errorf("tiler: processing %s: %w", filePath, err)
		}
	}
	return nil
}

func (t *Tiler) processMeshFile(filePath string, opts *tiler.TilerOptions) error {
	tools.LogOutput("> loading mesh...", filepath.Base(filePath))
	m, lib, err := loadMesh(filePath)
	if err != nil {
		return err
	}

	tools.LogOutput("> georeferencing vertices...", filepath.Base(filePath))
	bounds, transform, err := georeference(m, opts.Srid)
	if err != nil {
		return err
	}

	tools.LogOutput("> building tile tree...", filepath.Base(filePath))
	builder := tileset.NewBuilder(opts.TileOptions.TilesetConfig())
	root := builder.Build(m, lib, bounds)
	for _, failure := range builder.Failures {
		glog.Warningf("tileset: %v", failure)
	}
	glog.Infoln("tileset:", tileset.Summarize(root).String())

	outDir := filepath.Join(opts.TileOptions.Output, meshBaseName(filePath))
	tools.LogOutput("> writing tileset...", outDir)
	if err := builder.Write(root, outDir, &transform); err != nil {
		return err
	}

	tools.LogOutput("> done processing", filepath.Base(filePath))
	return nil
}

// georeference reprojects m's vertices in place from srid into a local ENU
// frame and returns the resulting bounds plus the ENU-to-ECEF matrix the
// tileset root transform needs to place the content back on the globe.
func georeference(m *mesh.IndexedMesh, srid int) (mesh.BoundingBox, [16]float64, error) {
	positions := make([][3]float64, m.VertexCount())
	for i := range positions {
		p := m.Position(uint32(i))
		positions[i] = [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	pipeline, err := georef.NewPipeline(srid, georef.NoopElevationCorrector{})
	if err != nil {
		return mesh.BoundingBox{}, [16]float64{}, fmt.Errorf("georef: %w", err)
	}
	defer pipeline.Close()

	local, transform, err := pipeline.ToLocalENU(positions)
	if err != nil {
		return mesh.BoundingBox{}, [16]float64{}, fmt.Errorf("georef: %w", err)
	}

	if footprint, ferr := pipeline.FootprintWGS84(positions); ferr == nil {
		glog.Infof("georef: WGS84 footprint lon[%v,%v] lat[%v,%v]", footprint.Min.X, footprint.Max.X, footprint.Min.Y, footprint.Max.Y)
	}

	for i, p := range local {
		m.Positions[i*3+0] = float32(p[0])
		m.Positions[i*3+1] = float32(p[1])
		m.Positions[i*3+2] = float32(p[2])
	}

	return m.Bounds(), transform, nil
}

func loadMesh(filePath string) (*mesh.IndexedMesh, *mesh.MaterialLibrary, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".obj":
		return ingest.LoadOBJ(filePath)
	case ".gltf", ".glb":
		return ingest.LoadGLTF(filePath)
	case ".ply":
		return ingest.LoadPLY(filePath)
	default:
		return nil, nil, fmt.Errorf("tiler: unsupported mesh extension %q", ext)
	}
}

func meshBaseName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
