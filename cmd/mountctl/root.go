package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Simplici0/mountbook/internal/config"
	"github.com/Simplici0/mountbook/internal/db"
)

func newRootCmd() *cobra.Command {
	var outputJSON bool

	root := &cobra.Command{
		Use:          "mountctl",
		Short:        "Quote and calendar tools for the mounting booking service",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")

	root.AddCommand(quoteCmd(&outputJSON))
	root.AddCommand(slotsCmd(&outputJSON))
	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	return root
}

// openDatabase loads configuration and opens the configured SQLite file.
func openDatabase(ctx context.Context) (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, database, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
