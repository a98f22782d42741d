package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbrandao/batepapo-server/internal/app"
	"github.com/vbrandao/batepapo-server/internal/config"
	"github.com/vbrandao/batepapo-server/internal/log"
)

func main() {
	var (
		configPath string
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "batepapo-server",
		Short:        "Chat backend with presence tracking and message visibility",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := log.New(logLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger = log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting batepapo server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
