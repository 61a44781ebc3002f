package main

import (
	"context"
	"fmt"

	"foodshare/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Create the donations schema",
	Action: func(c *cli.Context) error {
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		logrus.Info("Schema is up to date")
		return nil
	},
}
