package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"foodshare/internal/utils"

	"github.com/urfave/cli/v2"
)

var keygenCommand = &cli.Command{
	Name:  "keygen",
	Usage: "Generate an ENCRYPTION_KEY value",
	Action: func(c *cli.Context) error {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to read random bytes: %w", err)
		}

		fmt.Println(base64.StdEncoding.EncodeToString(key))
		return nil
	},
	Subcommands: []*cli.Command{
		{
			Name:  "nanoid",
			Usage: "Generate NanoIDs, e.g. for seeded rows",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"c"},
					Usage:   "Number of IDs to generate",
					Value:   1,
				},
			},
			Action: func(c *cli.Context) error {
				for range c.Int("count") {
					fmt.Println(utils.NanoID())
				}
				return nil
			},
		},
	},
}
