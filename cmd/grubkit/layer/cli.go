// Package layer provides subcommands for managing per-owner GRUB
// configuration layers.
package layer

import (
	"github.com/urfave/cli/v2"
)

var Cmd = &cli.Command{
	Name:  "layer",
	Usage: "Manages per-owner GRUB configuration layers",
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Category:  "Modify layers",
			Usage:     "Replaces the owner's layer with the given settings and re-merges all layers",
			ArgsUsage: "owner [KEY=VALUE ...]",
			Action:    setAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "from-file",
					Aliases: []string{"f"},
					Usage:   "Read the settings as a yaml mapping from this file instead of the arguments",
				},
				&cli.BoolFlag{
					Name:  "no-check",
					Usage: "Skip validating the committed configuration with grub-mkconfig",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Proceed even on a host which looks like a container",
				},
			},
		},
		{
			Name:      "rm",
			Aliases:   []string{"remove"},
			Category:  "Modify layers",
			Usage:     "Removes the owner's layer and re-merges the remaining layers",
			ArgsUsage: "owner",
			Action:    rmAction,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-check",
					Usage: "Skip validating the committed configuration with grub-mkconfig",
				},
			},
		},
		{
			Name:      "show",
			Category:  "Query layers",
			Usage:     "Shows the owner's current layer",
			ArgsUsage: "owner",
			Action:    showAction,
		},
		{
			Name:     "ls",
			Aliases:  []string{"list"},
			Category: "Query layers",
			Usage:    "Lists the owners currently holding layers",
			Action:   lsAction,
		},
		{
			Name:     "merged",
			Category: "Query layers",
			Usage:    "Shows the merged configuration",
			Action:   mergedAction,
		},
		{
			Name:     "check",
			Category: "Query layers",
			Usage:    "Checks that the current layers merge without conflicts",
			Action:   checkAction,
		},
		{
			Name:     "keys",
			Category: "Query layers",
			Usage:    "Lists the recognized GRUB configuration variables",
			Action:   keysAction,
		},
	},
}
