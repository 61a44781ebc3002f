package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "foodshare",
		Usage: "Donation impact presentation server",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			encodeCommand,
			decodeCommand,
			keygenCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
