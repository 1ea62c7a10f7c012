package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tillsight/tillsight/internal/common"
	"github.com/tillsight/tillsight/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a transaction spreadsheet into the store",
		Long: `Load raw transaction rows from a CSV/TSV export, apply the cleaning
predicates, and normalize the surviving rows into the relational store.

Invalid rows are dropped and counted, never fatal. Re-running an import
against a populated store is safe: every entity insert is an upsert
keyed by its natural key.

Examples:
  tillsight import online_retail.csv
  tillsight import --dry-run exports/2011.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Clean and summarize without touching the store")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	filePath := args[0]

	// Input errors are fatal before any store mutation.
	if _, err := os.Stat(filePath); err != nil {
		return common.NewUserError(fmt.Sprintf("cannot read input file %s", filePath), err)
	}

	slog.Info("Loading raw transaction rows", "file", filePath)

	reader := importer.NewReader()
	rows, err := reader.ReadFile(filePath)
	if err != nil {
		return err
	}
	slog.Info("Raw data loaded", "rows", len(rows))

	result := importer.Clean(rows)
	for _, reason := range importer.RejectOrder {
		if count := result.Rejected[reason]; count > 0 {
			slog.Info("Dropped rows", "reason", string(reason), "count", count)
		}
	}
	slog.Info("Cleaning complete",
		"original", result.Total,
		"kept", len(result.Rows),
		"removed", result.Removed())

	if dryRun {
		slog.Info("Dry run, skipping store import")
		return nil
	}
	// Row-level failures are never fatal. A file where every row was
	// rejected imports nothing and still exits cleanly.
	if len(result.Rows) == 0 {
		slog.Info("No valid rows to import", "file", filePath)
		return nil
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bar := progressbar.Default(int64(len(result.Rows)), "importing")
	if err := store.ImportRows(ctx, result.Rows, func(n int) {
		_ = bar.Add(n)
	}); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	_ = bar.Finish()

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	summary, err := store.GetSummary(ctx)
	if err != nil {
		return err
	}

	slog.Info("Import complete",
		"customers", counts.Customers,
		"products", counts.Products,
		"invoices", counts.Invoices,
		"order_items", counts.OrderItems,
		"total_revenue", summary.TotalRevenue)

	return nil
}
