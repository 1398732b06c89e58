package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jaspindersingh83/s30mocks-backend/internal/app"
	"github.com/jaspindersingh83/s30mocks-backend/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "s30mocks",
		Short:         "Mock-interview booking and payment backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("as", "", "e-mail of the user the command acts as")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(pricesCmd())
	rootCmd.AddCommand(slotsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and wires the application
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}

	return a, nil
}

func shutdown(a *app.App) {
	a.Close()
	_ = a.Logger.Sync()
}
