package tools

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/mesh2tiles/internal/tiler"
)

// meshExtensions are the file extensions internal/ingest can load,
// generalized from the teacher's single ".las" extension check.
var meshExtensions = map[string]bool{
	".obj":  true,
	".gltf": true,
	".glb":  true,
	".ply":  true,
}

// FileFinder resolves a TilerOptions.Input into the concrete mesh files a
// `tile` run should process.
type FileFinder interface {
	GetMeshFilesToProcess(opts *tiler.TilerOptions) []string
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// GetMeshFilesToProcess returns opts.Input itself when FolderProcessing is
// off (the common single-capture case), or every supported mesh file under
// it otherwise, honoring Recursive the same way the teacher's LAS folder
// walk did.
func (f *StandardFileFinder) GetMeshFilesToProcess(opts *tiler.TilerOptions) []string {
	if opts.TileOptions == nil || !opts.TileOptions.FolderProcessing {
		return []string{opts.Input}
	}
	return f.getMeshFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getMeshFilesFromInputFolder(opts *tiler.TilerOptions) []string {
	var files []string

	baseInfo, _ := os.Stat(opts.Input)
	err := filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !opts.TileOptions.Recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			}
			if meshExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	return files
}
