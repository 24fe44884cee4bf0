package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/shopsync/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Opens the SQL store named by STORE_BACKEND (postgres or sqlite), applying any pending migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadStore()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			if cfg.Backend != config.BackendPostgres && cfg.Backend != config.BackendSQLite {
				return fmt.Errorf("backend %q has no schema to migrate", cfg.Backend)
			}

			_, _, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied successfully (%s)\n", cfg.Backend)
			return nil
		},
	}
}
