// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logging.Fatal().Err(err).Send()
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vesseltrack",
		Usage:   "Vessel position ingestion, storage and read API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{config.ConfigPathEnvVar},
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				return os.Setenv(config.ConfigPathEnvVar, path)
			}
			return nil
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			decodeCommand(),
			pollOnceCommand(),
			dedupCommand(),
		},
	}
}

// loadConfig loads configuration and initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	return cfg, nil
}
