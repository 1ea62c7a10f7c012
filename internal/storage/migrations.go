package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial entity schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS customers (
					customer_id INTEGER PRIMARY KEY,
					country TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS products (
					stock_code TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS invoices (
					invoice_id TEXT PRIMARY KEY,
					customer_id INTEGER NOT NULL,
					invoice_date DATETIME NOT NULL,
					total_amount REAL NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (customer_id) REFERENCES customers(customer_id) ON DELETE RESTRICT
				)`,

				// row_hash is the content hash of the originating raw
				// row; the UNIQUE constraint keeps re-imports from
				// duplicating line items.
				`CREATE TABLE IF NOT EXISTS order_items (
					order_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
					row_hash TEXT UNIQUE NOT NULL,
					invoice_id TEXT NOT NULL,
					stock_code TEXT NOT NULL,
					quantity INTEGER NOT NULL CHECK (quantity > 0),
					unit_price REAL NOT NULL CHECK (unit_price > 0),
					line_total REAL NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (invoice_id) REFERENCES invoices(invoice_id) ON DELETE CASCADE,
					FOREIGN KEY (stock_code) REFERENCES products(stock_code) ON DELETE RESTRICT
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Indexes for aggregation queries",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id)`,
				`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(invoice_date)`,
				`CREATE INDEX IF NOT EXISTS idx_order_items_invoice ON order_items(invoice_id)`,
				`CREATE INDEX IF NOT EXISTS idx_order_items_stock ON order_items(stock_code)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Country index for geographic rollups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_customers_country ON customers(country)`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
