package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodshare/internal/backend"
	"foodshare/internal/codec"
	"foodshare/internal/db"
	"foodshare/internal/resolver"
	"foodshare/internal/server"
	"foodshare/internal/session"
	"foodshare/internal/store"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadDatabaseConfig()
	if err != nil {
		return err
	}

	logger := newLogger(config)

	cookie, err := codec.NewSessionCookie(config.EncryptionKey, config.SessionMaxAgeSec)
	if err != nil {
		return fmt.Errorf("session cookie: %w (set ENCRYPTION_KEY, see `foodshare keygen`)", err)
	}

	donorCodec, err := codec.New(config.EncryptionKey)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	donationRepo := store.NewDonationRepository(pool)
	sessionData := store.NewMemorySessionStore()

	backendURL := config.BackendBaseURL
	if backendURL == "" {
		backendURL = fmt.Sprintf("http://localhost:%d", config.ServerPort)
	}
	backendClient := backend.NewClient(backendURL, time.Duration(config.BackendTimeoutSec)*time.Second)
	donorResolver := resolver.New(donorCodec, logger)

	opts := session.Options{
		LoadingDelay:   time.Duration(config.LoadingDelayMS) * time.Millisecond,
		BackendTimeout: time.Duration(config.BackendTimeoutSec) * time.Second,
	}

	registry := session.NewRegistry(func(id string) *session.Controller {
		return session.NewController(session.Dependencies{
			Navigator: session.NewURLNavigator(),
			Store:     sessionData.Scope(id),
			Backend:   backendClient,
			Encoder:   donorCodec,
			Resolver:  donorResolver,
			Logger:    logger.WithField("session", id),
		}, opts)
	}, time.Duration(config.SessionIdleTimeoutSec)*time.Second, logger)
	registry.OnEvict = sessionData.Drop
	defer registry.Close()

	go registry.Run(ctx, time.Minute)

	srv := server.New(config, logger, donationRepo, registry, cookie)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
