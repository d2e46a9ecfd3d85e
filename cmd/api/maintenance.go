package main

import (
	"fmt"
	"log"

	"github.com/cimillas/shelfwise/internal/app"
	"github.com/cimillas/shelfwise/internal/clock"
	"github.com/cimillas/shelfwise/internal/storage/postgres"
	"github.com/cimillas/shelfwise/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd(logger *log.Logger, cfg *config) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := openPool(cfg.databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx := cmd.Context()
			pending, err := migrations.Pending(ctx, pool)
			if err != nil {
				return fmt.Errorf("list pending migrations: %w", err)
			}
			if len(pending) == 0 {
				logger.Printf("schema up to date")
				return nil
			}
			for _, name := range pending {
				logger.Printf("pending migration %s", name)
			}
			if dryRun {
				return nil
			}
			if err := migrations.Apply(ctx, pool); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logger.Printf("applied %d migration(s)", len(pending))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

func newSyncOverdueCmd(logger *log.Logger, cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-overdue",
		Short: "Flag Active loans past their due date as Overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := openPool(cfg.databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			sweeper := app.NewOverdueSweeper(postgres.NewCirculationRepository(pool), clock.NewSystem())
			n, err := sweeper.SyncOverdue(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync overdue: %w", err)
			}
			logger.Printf("marked %d loan(s) overdue", n)
			return nil
		},
	}
}

