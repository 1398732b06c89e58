package main

import (
	"context"
	"fmt"

	"github.com/jaspindersingh83/s30mocks-backend/internal/app"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			return migrateUp(cmd.Context(), a)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			mg, err := a.Migrator()
			if err != nil {
				return err
			}
			defer mg.Close()

			return mg.Down(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			mg, err := a.Migrator()
			if err != nil {
				return err
			}
			defer mg.Close()

			version, err := mg.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	return cmd
}

func migrateUp(ctx context.Context, a *app.App) error {
	mg, err := a.Migrator()
	if err != nil {
		return err
	}
	defer mg.Close()

	return mg.Run(ctx)
}
