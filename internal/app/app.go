// Package app wires the store, services, sweeper and transport together.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vbrandao/batepapo-server/internal/config"
	"github.com/vbrandao/batepapo-server/internal/service/messages"
	"github.com/vbrandao/batepapo-server/internal/service/presence"
	"github.com/vbrandao/batepapo-server/internal/store"
	"github.com/vbrandao/batepapo-server/internal/store/sqlite"
	transporthttp "github.com/vbrandao/batepapo-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	sweeper         *presence.Sweeper
	store           store.Store
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	registry := presence.NewRegistry(st)
	sweeper := presence.NewSweeper(registry, st, cfg.SweepInterval, cfg.PresenceTTL, logger)
	msgService := messages.New(st, registry)

	server := transporthttp.NewServer(registry, msgService, cfg, logger)

	return &App{
		server:          server,
		sweeper:         sweeper,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the sweeper and the HTTP server, blocking until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.sweeper.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
