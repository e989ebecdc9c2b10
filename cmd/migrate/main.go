package main

import (
	"database/sql"
	"fmt"
	"os"

	"unievent/pkg/config"
	"unievent/pkg/database"
	"unievent/pkg/logger"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cliApp := &cli.App{
		Name:  "migrate",
		Usage: "manage the database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "migrations",
				Usage:   "directory with migration files",
				EnvVars: []string{"MIGRATIONS_DIR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations; on MySQL, sync the schema from the models",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					if cfg.DBDriver == "mysql" {
						if err := syncModels(cfg); err != nil {
							return err
						}
						log.Info("MySQL schema synced from models")
						return nil
					}
					return withDB(func(db *sql.DB, dir string) error {
						if err := goose.Up(db, dir); err != nil {
							return fmt.Errorf("failed to run migrations: %w", err)
						}
						log.Info("Migrations applied successfully")
						return nil
					})(c)
				},
			},
			{
				Name:  "down",
				Usage: "roll back the latest migration",
				Action: withDB(func(db *sql.DB, dir string) error {
					if err := goose.Down(db, dir); err != nil {
						return fmt.Errorf("failed to rollback migrations: %w", err)
					}
					log.Info("Migrations rolled back successfully")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print the state of every migration",
				Action: withDB(func(db *sql.DB, dir string) error {
					return goose.Status(db, dir)
				}),
			},
			{
				Name:      "create",
				Usage:     "create a new SQL migration",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("name is required for create", 1)
					}
					if err := goose.Create(nil, c.String("dir"), name, "sql"); err != nil {
						return fmt.Errorf("failed to create migration: %w", err)
					}
					log.Info("Created migration: %s", name)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Error("Migration failed: %v", err)
		os.Exit(1)
	}
}

// withDB opens the configured PostgreSQL database for the duration of fn.
func withDB(fn func(db *sql.DB, dir string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.DBDriver != "postgres" {
			return cli.Exit(fmt.Sprintf("versioned migrations target postgres, DB_DRIVER is %q", cfg.DBDriver), 1)
		}

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}
		return fn(db, c.String("dir"))
	}
}

// syncModels is the MySQL schema path: goose migrations are written for
// PostgreSQL, so the tables come from the gorm models.
func syncModels(cfg *config.Config) error {
	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return database.Migrate(db)
}
