package main

import (
	"fmt"

	"foodshare/pkg/types"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.CookieName == "" {
		c.CookieName = "impact_session"
	}

	return c, nil
}

// loadDatabaseConfig is loadConfig for commands that talk to postgres.
func loadDatabaseConfig() (*types.Config, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	return c, nil
}

func newLogger(config *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
