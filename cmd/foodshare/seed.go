package main

import (
	"context"
	"fmt"

	"foodshare/internal/db"
	"foodshare/internal/seed"
	"foodshare/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with fake donations",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of fake donations to log",
			Value:   50,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded donations first",
		},
	},
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

		logrus.Info("Connected to database")

		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		donationRepo := store.NewDonationRepository(pool)

		logrus.Info("Seeding donations...")
		if err := seed.SeedFakeDonations(ctx, donationRepo, c.Int("count"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed donations: %w", err)
		}

		logrus.Info("Donations seeded successfully")

		return nil
	},
}
