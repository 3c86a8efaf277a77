package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"boletera-api/internal/config"
	"boletera-api/internal/database"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "apply or inspect database migrations",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "run pending migrations",
				Action: up,
			},
			{
				Name:   "status",
				Usage:  "show which migrations have been applied",
				Action: status,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("migrate failed")
	}
}

func open() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg.Database)
}

func up(c *cli.Context) error {
	db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return err
	}
	fmt.Println("All migrations completed successfully")
	return nil
}

func status(c *cli.Context) error {
	db, err := open()
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := db.GetMigrationStatus()
	if err != nil {
		return err
	}

	for _, s := range statuses {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, mark)
	}
	return nil
}
