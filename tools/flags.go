package tools

import (
	"flag"
	"log"
)

const (
	CommandTile     = "tile"
	CommandValidate = "validate"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// TilerFlags holds the options shared by every subcommand.
type TilerFlags struct {
	Input *string `json:"input"`
	Srid  *int    `json:"srid"`
}

// FlagsForCommandTile holds `tile`'s options, generalized from the
// teacher's FlagsForCommandIndex (LAS grid-cell sizing, 8-bit colors,
// geoid correction) to the mesh-tiling config table (spec.md §6).
type FlagsForCommandTile struct {
	TilerFlags
	Output              *string
	MaxDepth            *int
	MaxTrianglesPerTile *int
	MinTileSizeM        *float64
	TextureFormat       *string
	TextureQuality      *int
	TextureMaxSize      *int
	Threads             *int
	FolderProcessing    *bool
	Recursive           *bool
	Silent              *bool
	LogTimestamp        *bool
	Help                *bool
	Version             *bool
}

// FlagsForCommandValidate holds `validate`'s options.
type FlagsForCommandValidate struct {
	TilerFlags
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of mesh2tiles.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandTile(args []string) FlagsForCommandTile {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-tile", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input mesh file/folder (OBJ, glTF/GLB, or PLY).")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the tileset data.")
	srid := defineIntFlagCommand(flagCommand, "srid", "e", 4326, "EPSG srid code of the input mesh's coordinates.")
	maxDepth := defineIntFlagCommand(flagCommand, "max-depth", "d", 12, "Hard cap on octree depth.")
	maxTrianglesPerTile := defineIntFlagCommand(flagCommand, "max-triangles", "m", 60000, "Leaf stop condition: max triangles retained per tile.")
	minTileSizeM := defineFloat64FlagCommand(flagCommand, "min-tile-size", "n", 1.0, "Stop splitting once a tile's bounding box diagonal falls below this, in meters.")
	textureFormat := defineStringFlagCommand(flagCommand, "texture-format", "", "png", "Output atlas texture format: webp, ktx2, png, or none.")
	textureQuality := defineIntFlagCommand(flagCommand, "texture-quality", "", 90, "Output atlas texture codec quality, 0-100.")
	textureMaxSize := defineIntFlagCommand(flagCommand, "texture-max-size", "", 4096, "Clamp the packed atlas's longest side, in pixels.")
	threads := defineIntFlagCommand(flagCommand, "threads", "t", 0, "Worker pool size; 0 uses runtime.NumCPU().")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of every mesh file from the input folder. Input must be a folder if specified.")
	recursive := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for mesh files inside the input folder's subfolders.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of mesh2tiles.")

	flagCommand.Parse(args)

	return FlagsForCommandTile{
		TilerFlags: TilerFlags{
			Input: input,
			Srid:  srid,
		},
		Output:              output,
		MaxDepth:            maxDepth,
		MaxTrianglesPerTile: maxTrianglesPerTile,
		MinTileSizeM:        minTileSizeM,
		TextureFormat:       textureFormat,
		TextureQuality:      textureQuality,
		TextureMaxSize:      textureMaxSize,
		Threads:             threads,
		FolderProcessing:    folderProcessing,
		Recursive:           recursive,
		Silent:              silent,
		LogTimestamp:        logTimestamp,
		Help:                help,
		Version:             version,
	}
}

func ParseFlagsForCommandValidate(args []string) FlagsForCommandValidate {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-validate", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the tileset folder to validate (the directory containing tileset.json).")
	srid := defineIntFlagCommand(flagCommand, "srid", "e", 4326, "unused by validate; accepted for TilerFlags symmetry with tile.")

	flagCommand.Parse(args)

	return FlagsForCommandValidate{
		TilerFlags: TilerFlags{
			Input: input,
			Srid:  srid,
		},
	}
}

func defineStringFlag(name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flag.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlag(name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flag.IntVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64Flag(name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flag.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
