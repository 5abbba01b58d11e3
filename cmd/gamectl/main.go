package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"target-shooting/internal/config"
	"target-shooting/internal/db"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gamectl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gamectl",
		Usage: "manage stored target shooting games",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", EnvVars: []string{"STORAGE_DRIVER"}, Usage: "memory, file, postgres, mysql or sqlite"},
			&cli.StringFlag{Name: "data-file", EnvVars: []string{"DATA_FILE"}, Usage: "games document for the file driver"},
			&cli.BoolFlag{Name: "verbose", Usage: "log storage activity"},
		},
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(".env")
		},
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "load games from a {\"games\": [...]} document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true},
				},
				Action: withGateway(importCommand),
			},
			{
				Name:  "export",
				Usage: "write every game to a {\"games\": [...]} document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true},
				},
				Action: withGateway(exportCommand),
			},
			{
				Name:  "reset",
				Usage: "delete every game",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm deletion"},
				},
				Action: withGateway(resetCommand),
			},
			{
				Name:  "leaderboard",
				Usage: "print the ranking for one game",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "game", Required: true},
				},
				Action: withGateway(leaderboardCommand),
			},
		},
	}
}

type commandFunc func(c *cli.Context, env *commandEnv) error

func withGateway(fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := config.Load()
		if driver := c.String("driver"); driver != "" {
			cfg.StorageDriver = driver
		}
		if path := c.String("data-file"); path != "" {
			cfg.DataFile = path
		}
		logger := zap.NewNop()
		if c.Bool("verbose") {
			dev, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = dev
		}
		defer func() { _ = logger.Sync() }()

		gw, conn, err := db.OpenGateway(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(conn) }()
		logger.Debug("storage opened", zap.String("driver", gw.Name()))
		return fn(c, &commandEnv{gw: gw, log: logger, out: c.App.Writer})
	}
}
