package main

import (
	"log"
	"os"
	"runtime/debug"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"github.com/grubkit/grubkit/cmd/grubkit/layer"
	"github.com/grubkit/grubkit/pkg/layers"
)

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var app = &cli.App{
	Name:    "grubkit",
	Version: toolVersion,
	Usage:   "Manages GRUB configuration layers contributed by independent owners",
	Commands: []*cli.Command{
		layer.Cmd,
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config-dir",
			Aliases: []string{"d"},
			Value:   layers.DefaultDirPath,
			Usage:   "Path of the GRUB config drop-in directory",
			EnvVars: []string{"GRUBKIT_CONFIG_DIR"},
		},
	},
	Suggest: true,
}

// Versioning

// fallbackVersion is the version which the grubkit tool reports itself as if
// its actual version is unknown.
const fallbackVersion = "v0.1.0-dev"

var (
	toolVersion = determineVersion(buildSummary, fallbackVersion)
	// buildSummary should be overridden by ldflags, such as with GoReleaser's "Summary".
	buildSummary = ""
)

// determineVersion returns either a semver, a pseudoversion, or a Git hash based on information
// available from Go's `debug.ReadBuildInfo()`.
func determineVersion(override, fallback string) string {
	if override != "" {
		return override
	}

	const dirtySuffix = "-dirty"
	// Determine any version tags, if available
	if info, ok := debug.ReadBuildInfo(); ok &&
		info.Main.Version != "" && info.Main.Version != "(devel)" {
		v := info.Main.Version
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}
	if v := versioninfo.Version; v != "unknown" && v != "(devel)" {
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}

	// Fall back to whatever is available
	if r := versioninfo.Revision; r != "unknown" && r != "" {
		if versioninfo.DirtyBuild {
			r += dirtySuffix
		}
		return r
	}
	return fallback
}
