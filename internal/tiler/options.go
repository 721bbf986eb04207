// Package tiler holds the mesh2tiles run configuration, renamed from the
// teacher's package of the same name but keeping its
// struct-of-options-with-Copy() pattern (TilerOptions / TilerIndexOptions /
// TilerMergeOptions), generalized from LAS/grid fields to the mesh-tiling
// fields the external interface (spec.md §6) names.
package tiler

import "github.com/ecopia-map/mesh2tiles/internal/tileset"

// Command selects which CLI subcommand is running.
type Command string

const (
	CommandTile     Command = "tile"
	CommandValidate Command = "validate"
)

// TilerOptions carries every option the `tile` and `validate` subcommands
// accept. Command selects which sub-options below apply.
type TilerOptions struct {
	Input string // input mesh file (OBJ/glTF/GLB/PLY)
	Srid  int    // EPSG code of the input mesh's coordinate reference system

	Command      Command
	TileOptions  *TileOptions
	ValidateOptions *ValidateOptions
}

// TileOptions mirrors spec.md §6's external-interface config table.
type TileOptions struct {
	Output string // output tileset directory

	// FolderProcessing/Recursive generalize the teacher's LAS folder-walk
	// flags (tools.FileFinder) from one .las extension to the mesh
	// extensions internal/ingest understands, so a batch of photogrammetry
	// capture tiles can be tiled in one run.
	FolderProcessing bool
	Recursive        bool

	MaxDepth            int             // hard cap on octree depth
	MaxTrianglesPerTile int             // leaf stop condition (50k-100k typical)
	MinTileSizeM        float64         // stop splitting below this box diagonal
	SimplifySchedule    []tileset.SimplifyLevel // per-level (ratio, lock_border)

	TextureFormat  string // "webp" | "ktx2" | "png" | "none"
	TextureQuality int    // 0-100 codec quality
	TextureMaxSize int    // clamp atlas longest side, in pixels

	Threads int // worker pool size
}

// ValidateOptions configures the `validate` subcommand.
type ValidateOptions struct {
	// no options beyond TilerOptions.Input today; kept as its own type to
	// mirror the teacher's one-struct-per-subcommand shape and leave room
	// for a future strictness flag without reshaping TilerOptions.
}

// DefaultTileOptions mirrors tileset.DefaultConfig's reference schedule.
func DefaultTileOptions() *TileOptions {
	cfg := tileset.DefaultConfig()
	return &TileOptions{
		Output:              "out",
		MaxDepth:            cfg.MaxDepth,
		MaxTrianglesPerTile: cfg.MaxTrianglesPerTile,
		MinTileSizeM:        cfg.MinTileSizeM,
		SimplifySchedule:    cfg.SimplifySchedule,
		TextureFormat:       "png",
		TextureQuality:      90,
		TextureMaxSize:      4096,
		Threads:             cfg.Threads,
	}
}

// TilesetConfig converts TileOptions into the internal/tileset.Config the
// Builder expects.
func (o *TileOptions) TilesetConfig() tileset.Config {
	return tileset.Config{
		MaxDepth:                o.MaxDepth,
		MaxTrianglesPerTile:     o.MaxTrianglesPerTile,
		MinTileSizeM:            o.MinTileSizeM,
		SimplifySchedule:        o.SimplifySchedule,
		Threads:                 o.Threads,
		CompactionSkipThreshold: 256,
		TextureFormat:           o.TextureFormat,
		TextureQuality:          o.TextureQuality,
		TextureMaxSize:          o.TextureMaxSize,
	}
}

// Copy returns a deep copy of opt, matching the teacher's TilerOptions.Copy
// pattern (each sub-options pointer is independently cloned so mutating a
// copy's TileOptions never reaches back into the original).
func (opt *TilerOptions) Copy() *TilerOptions {
	newOpt := &TilerOptions{
		Input:   opt.Input,
		Srid:    opt.Srid,
		Command: opt.Command,
	}
	if opt.TileOptions != nil {
		tileOpt := *opt.TileOptions
		tileOpt.SimplifySchedule = append([]tileset.SimplifyLevel(nil), opt.TileOptions.SimplifySchedule...)
		newOpt.TileOptions = &tileOpt
	}
	if opt.ValidateOptions != nil {
		validateOpt := *opt.ValidateOptions
		newOpt.ValidateOptions = &validateOpt
	}
	return newOpt
}
