package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/urfave/cli/v2"

	"target-shooting/internal/config"
)

const migrationsDir = "db/migrations"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	app := &cli.App{
		Name:  "migrate",
		Usage: "apply or scaffold SQL migrations for the games table",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return run(func(m *migrate.Migrate) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "roll back the most recent migration",
				Action: func(c *cli.Context) error {
					return run(func(m *migrate.Migrate) error { return m.Steps(-1) })
				},
			},
			{
				Name:  "create",
				Usage: "create an empty up/down migration pair",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "migration name"},
				},
				Action: func(c *cli.Context) error {
					return create(c.String("name"))
				},
			},
		},
		DefaultCommand: "up",
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(step func(*migrate.Migrate) error) error {
	dsn, err := databaseURL()
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+migrationsDir, dsn)
	if err != nil {
		return fmt.Errorf("migration setup failed: %w", err)
	}
	defer m.Close()
	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("database migrations applied")
	return nil
}

// databaseURL maps DATABASE_URL onto a golang-migrate URL. MySQL DSNs in the
// driver's user:pass@tcp(host)/db form get the mysql:// scheme prepended.
func databaseURL() (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", errors.New("DATABASE_URL is not set")
	}
	if os.Getenv("STORAGE_DRIVER") == config.DriverMySQL && !strings.HasPrefix(dsn, "mysql://") {
		dsn = "mysql://" + dsn
	}
	return dsn, nil
}

func create(name string) error {
	if strings.ContainsAny(name, " ") {
		return errors.New("migration name must not contain spaces")
	}
	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, name)
	upPath := filepath.Join(migrationsDir, base+".up.sql")
	downPath := filepath.Join(migrationsDir, base+".down.sql")

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return fmt.Errorf("create migrations dir: %w", err)
	}
	if err := writeFile(upPath, "-- up migration\n"); err != nil {
		return fmt.Errorf("create up migration: %w", err)
	}
	if err := writeFile(downPath, "-- down migration\n"); err != nil {
		return fmt.Errorf("create down migration: %w", err)
	}
	log.Printf("created %s and %s", upPath, downPath)
	return nil
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
