package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder backend and notification dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer shutdown(a)

			if !skipMigrations {
				if err := migrateUp(ctx, a); err != nil {
					return err
				}
			}

			if err := a.Prices.SeedDefaults(ctx); err != nil {
				return err
			}

			a.Logger.Info("Starting s30mocks", zap.String("version", Version))
			err = a.Run(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}

			a.Logger.Info("Shutting down", zap.Error(context.Cause(ctx)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")

	return cmd
}
