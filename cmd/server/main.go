// Command server runs the press REST API and its database migrations.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	configFlag = "config"
	portFlag   = "port"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    configFlag,
		Aliases: []string{"c"},
		Usage:   "Path to a YAML config file; defaults to ./config.yaml when present",
		EnvVars: []string{"PRESS_CONFIG"},
	},
}

func newCLI() *cli.App {
	app := cli.NewApp()
	app.Name = "press-api"
	app.Usage = "Serve a content REST API with posts, terms and site settings."
	app.Flags = globalFlags
	app.Commands = []*cli.Command{
		{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "Start the HTTP server",
			Action:  serveAction,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    portFlag,
					Aliases: []string{"p"},
					Usage:   "Override server.port",
				},
			},
		},
		{
			Name:      "migrate",
			Aliases:   []string{"m"},
			Usage:     "Run database migrations against the configured Postgres database",
			ArgsUsage: "<up|down|status|version|reset|redo> [args...]",
			Action:    migrateAction,
		},
	}
	// serve is the default when no command is named.
	app.Action = serveAction
	return app
}

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
