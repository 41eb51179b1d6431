package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/mountbook/internal/migrations"
	"github.com/Simplici0/mountbook/internal/pricing"
	"github.com/Simplici0/mountbook/internal/seed"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, database, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(ctx, database, cfg.MigrationsDir); err != nil {
				return err
			}
			version, err := migrations.Version(ctx, database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var tablePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user, default business hours and price table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, database, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if tablePath == "" {
				tablePath = cfg.PriceTablePath
			}
			seedCfg := seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword}
			if tablePath != "" {
				raw, err := os.ReadFile(tablePath)
				if err != nil {
					return fmt.Errorf("read price table: %w", err)
				}
				table, err := pricing.ParseTable(raw)
				if err != nil {
					return err
				}
				seedCfg.PriceTable = &table
			}

			stats, err := seed.Run(ctx, database, seedCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d inserts, %d updates\n", stats.Inserts, stats.Updates)
			return nil
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "Price table JSON file (defaults to PRICE_TABLE_PATH)")
	return cmd
}
