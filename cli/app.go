// Package cli contains the dimensi command line interface.
package cli

import (
	"io"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Flags.
const (
	configFlag = "config"
	debugFlag  = "debug"

	measureFlagJSON   = "json"
	measureFlagOut    = "out"
	measureFlagFake   = "fake"
	measureFlagCamera = "camera"

	serveFlagPort = "port"
)

var app = &cli.App{
	Name:            "dimensi",
	Usage:           "measure the objects in your images",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "load the service configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "measure",
			Usage:     "measure the objects in an image file",
			ArgsUsage: "<image>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  measureFlagJSON,
					Usage: "print the raw measurement result as JSON",
				},
				&cli.PathFlag{
					Name:    measureFlagOut,
					Aliases: []string{"o"},
					Usage:   "write the annotated image to `FILE`",
				},
				&cli.BoolFlag{
					Name:  measureFlagFake,
					Usage: "use canned model backends instead of the configured ones",
				},
				&cli.StringFlag{
					Name:  measureFlagCamera,
					Usage: "override the camera model parameters with inline `JSON` (relaxed JSON5 accepted)",
				},
			},
			Action: MeasureAction,
		},
		{
			Name:  "serve",
			Usage: "serve the measurement pipeline over HTTP",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  serveFlagPort,
					Usage: "port to listen on",
				},
			},
			Action: ServeAction,
		},
		{
			Name:   "models",
			Usage:  "list the supported camera model types and their parameters",
			Action: ModelsAction,
		},
		{
			Name:   "version",
			Usage:  "print version info for this program",
			Action: VersionAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func actionLogger(c *cli.Context) golog.Logger {
	if c.Bool(debugFlag) {
		return golog.NewDebugLogger("cli")
	}
	return zap.NewNop().Sugar()
}
