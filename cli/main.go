package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go/cli/commands"
)

func main() {
	app := &cli.App{
		Name:    "labelforge",
		Usage:   "manage projects and assets on the LabelForge platform",
		Version: "0.4.0",
		Flags:   commands.GlobalFlags(),
		Commands: []*cli.Command{
			commands.Project(),
			commands.Member(),
			commands.Asset(),
			commands.Storage(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
