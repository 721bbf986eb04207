package pkg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/ecopia-map/mesh2tiles/internal/tiler"
	"github.com/ecopia-map/mesh2tiles/internal/validate"
)

// Validator implements the `validate` subcommand: walk a tileset directory,
// resolve every content.glb, and report structural problems, grounded on
// the teacher's TilerVerify.RunTilerVerifyLas log-and-continue loop.
type Validator struct{}

// NewValidator builds a Validator.
func NewValidator() ITiler {
	return &Validator{}
}

// RunTiler validates the tileset rooted at opts.Input, either a tileset
// folder (its tileset.json is read) or a tileset.json file.
func (v *Validator) RunTiler(opts *tiler.TilerOptions) error {
	rootPath := opts.Input
	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		rootPath = filepath.Join(rootPath, "tileset.json")
	}
	result, err := validate.Tileset(rootPath)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	glog.Infof("validate: checked %d tileset.json document(s), %d content file(s)", result.TilesetsChecked, result.ContentsChecked)
	for _, e := range result.Errors {
		glog.Errorln(e)
	}

	if !result.OK() {
		return fmt.Errorf("validate: found %d error(s)", len(result.Errors))
	}
	glog.Infoln("validate: tileset is valid")
	return nil
}
