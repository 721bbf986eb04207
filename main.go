/*
 * This file is part of the mesh2tiles distribution.
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/mesh2tiles/internal/tileset"
	"github.com/ecopia-map/mesh2tiles/internal/tiler"
	"github.com/ecopia-map/mesh2tiles/pkg"
	"github.com/ecopia-map/mesh2tiles/tools"
)

const VERSION = "0.1.0"

const logo = `
                  _     ____  _   _ _
 _ __ ___   ___ __| |__ |___ \| |_(_) | ___  ___
| '_   _ \ / _ ' __/ _ \  __) | __| | |/ _ \/ __|
| | | | | |  __\__ \ | | |/ __/| |_| | |  __/\__ \
|_| |_| |_|\___|___/_| |_|_____|\__|_|_|\___||___/
  A photogrammetry mesh 3D Tiles generator written in golang
`

func main() {
	log.SetPrefix("[mesh2tiles] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()
	log.Println(tools.FmtJSONString(flagsGlobal))

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [tile|validate].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandTile:
		mainCommandTile(args)
	case tools.CommandValidate:
		mainCommandValidate(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [tile|validate]", cmd)
	}
}

func mainCommandTile(args []string) {
	defer timeTrack(time.Now(), "tile")

	flags := tools.ParseFlagsForCommandTile(args)

	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	cfg := tileset.DefaultConfig()
	opts := &tiler.TilerOptions{
		Input:   *flags.Input,
		Srid:    *flags.Srid,
		Command: tiler.CommandTile,
		TileOptions: &tiler.TileOptions{
			Output:              *flags.Output,
			FolderProcessing:    *flags.FolderProcessing,
			Recursive:           *flags.Recursive,
			MaxDepth:            *flags.MaxDepth,
			MaxTrianglesPerTile: *flags.MaxTrianglesPerTile,
			MinTileSizeM:        *flags.MinTileSizeM,
			SimplifySchedule:    cfg.SimplifySchedule,
			TextureFormat:       *flags.TextureFormat,
			TextureQuality:      *flags.TextureQuality,
			TextureMaxSize:      *flags.TextureMaxSize,
			Threads:             resolveThreads(*flags.Threads),
		},
	}

	if msg, ok := validateOptionsForCommandTile(opts); !ok {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	err := pkg.NewTiler(tools.NewStandardFileFinder()).RunTiler(opts)
	if err != nil {
		log.Fatal("Error while tiling: ", err)
	} else {
		tools.LogOutput("Conversion Completed")
	}
}

func mainCommandValidate(args []string) {
	defer timeTrack(time.Now(), "validate")

	flags := tools.ParseFlagsForCommandValidate(args)

	opts := &tiler.TilerOptions{
		Input:           *flags.Input,
		Srid:            *flags.Srid,
		Command:         tiler.CommandValidate,
		ValidateOptions: &tiler.ValidateOptions{},
	}

	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		log.Fatal("Error parsing input parameters: input folder not found")
	}

	err := pkg.NewValidator().RunTiler(opts)
	if err != nil {
		log.Fatal("Validation failed: ", err)
	}
}

func validateOptionsForCommandTile(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if opts.TileOptions.Output == "" {
		return "output folder must be specified", false
	}
	if err := tools.CreateDirectoryIfDoesNotExist(opts.TileOptions.Output); err != nil {
		return fmt.Sprintf("could not create output folder: %v", err), false
	}
	if opts.TileOptions.MaxTrianglesPerTile <= 0 {
		return "max-triangles must be a positive integer", false
	}
	return "", true
}

func resolveThreads(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("mesh2tiles tiles a photogrammetry mesh (OBJ/glTF/GLB/PLY) into an OGC 3D Tiles 1.1 dataset consumable by Cesium.js")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
