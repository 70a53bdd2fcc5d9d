// This is the main entry point of the BancoNova back end.
// It exposes two commands: `serve` (the default) starts the HTTP API, and
// `migrate` applies or reverts the embedded database schema.
// @title BancoNova API
// @version 1.0
// @description Registration, login and dashboard API for the BancoNova banking demo.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
package main

import (
	"io"
	"log"
	"log/slog"
	"os"

	// `godotenv` loads environment variables from a .env file, useful for development.
	"github.com/joho/godotenv"
	// `urfave/cli` parses the command line into commands and flags.
	"github.com/urfave/cli/v2"

	"github.com/user/banconova-go/config"
	"github.com/user/banconova-go/db"
	"github.com/user/banconova-go/logging"
)

func main() {
	app := &cli.App{
		Name:   "banconova",
		Usage:  "BancoNova banking demo back end",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply the embedded database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "down",
						Usage: "revert every migration instead of applying them",
					},
				},
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("banconova: %v", err)
	}
}

// bootstrap loads .env, the configuration and the logger shared by every command.
// The returned closer releases the log file, if one is configured.
func bootstrap() (*config.AppConfig, *slog.Logger, io.Closer, error) {
	// In production, variables are usually set directly and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func migrate(c *cli.Context) error {
	cfg, logger, closer, err := bootstrap()
	if err != nil {
		return err
	}
	defer closer.Close()

	direction := db.Up
	if c.Bool("down") {
		direction = db.Down
	}
	return db.RunMigrations(cfg.DB, direction, logger)
}
