package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tillsight/tillsight/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Migrate logs each version it applies; this reports the
			// verified end state.
			slog.Info("Database ready", "schema_version", storage.ExpectedSchemaVersion)
			return nil
		},
	}
}
