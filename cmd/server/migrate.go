package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	step := func(use, short string, fn func(*database.DB, context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				cfg, db, log, err := bootstrap(ctx, "migrate")
				if err != nil {
					return err
				}
				defer db.Close()
				if err := fn(db, ctx); err != nil {
					log.Error("migrate "+use, zap.Error(err))
					return err
				}
				log.Info("migrate "+use+" done", zap.String("driver", cfg.Database.Driver))
				return nil
			},
		}
	}
	cmd.AddCommand(
		step("up", "Apply all pending migrations", (*database.DB).MigrateUp),
		step("down", "Roll back the latest migration", (*database.DB).MigrateDown),
		step("status", "Print the migration status", (*database.DB).MigrateStatus),
	)
	return cmd
}
