// Package commands holds the CLI subcommands. Each exported function builds
// one top-level command; shared client wiring lives here.
package commands

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/labelforge/labelforge-go"
	"github.com/labelforge/labelforge-go/asset"
	"github.com/labelforge/labelforge-go/config"
)

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "GraphQL endpoint of the platform",
			EnvVars: []string{"LABELFORGE_API_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key",
			EnvVars: []string{"LABELFORGE_API_KEY"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "debug logging",
		},
	}
}

// newClient loads the environment configuration, applies flag overrides and
// returns an authenticated client.
func newClient(c *cli.Context, assetOpts ...asset.Option) (*labelforge.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := c.String("endpoint"); v != "" {
		cfg.API.Endpoint = v
	}
	if v := c.String("api-key"); v != "" {
		cfg.API.Key = v
	}
	if c.Bool("verbose") {
		cfg.Logger.Level = "debug"
	}
	initLogger(cfg.Logger)
	return labelforge.New(cfg, assetOpts...)
}

func initLogger(cfg config.LoggerConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
