package main

import "github.com/urfave/cli/v3"

func allFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(generalFlags()))
	flags = append(flags, generalFlags()...)
	flags = append(flags, projectFlags()...)

	return flags
}

const (
	FlagDebug   = "debug"
	EnvDebug    = "STAGECUE_DEBUG"
	FlagNoColor = "no-color"
	EnvNoColor  = "STAGECUE_NO_COLOR"
	FlagConfig  = "config"
	EnvConfig   = "STAGECUE_CONFIG"
)

func generalFlags() []cli.Flag {
	category := "general"

	return []cli.Flag{
		&cli.BoolFlag{
			Name:     FlagDebug,
			Aliases:  []string{"D"},
			Category: category,
			Sources:  cli.EnvVars(EnvDebug),
			Value:    false,
			Usage:    "Write debug logs to a file (stagecue_debug.log) in current directory.",
		},
		&cli.BoolFlag{
			Name:     FlagNoColor,
			Aliases:  []string{"C"},
			Category: category,
			Sources:  cli.EnvVars(EnvNoColor),
			Value:    false,
			Usage:    "Disable coloration.",
		},
		&cli.StringFlag{
			Name:     FlagConfig,
			Aliases:  []string{"c"},
			Category: category,
			Sources:  cli.EnvVars(EnvConfig),
			Usage:    "Path to the config `FILE`.",
		},
	}
}

const (
	FlagProject = "project"
	EnvProject  = "STAGECUE_PROJECT"
)

func projectFlags() []cli.Flag {
	category := "project"

	return []cli.Flag{
		&cli.StringFlag{
			Name:     FlagProject,
			Aliases:  []string{"p"},
			Category: category,
			Sources:  cli.EnvVars(EnvProject),
			Usage:    "The project `FILE` to open. Starts with an empty project when omitted.",
		},
	}
}
