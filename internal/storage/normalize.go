package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/tillsight/tillsight/internal/common"
	"github.com/tillsight/tillsight/internal/model"
)

// ImportRows normalizes cleaned rows into the four entity tables inside
// a single transaction. Parent entities are created before dependents
// and every insert is an upsert keyed by the natural key (row hash for
// order items), so re-running an import never creates duplicates.
// Invoice totals are recomputed from line items at the end of the pass.
//
// progress, if non-nil, is called once per processed row.
func (s *SQLiteStorage) ImportRows(ctx context.Context, rows []model.RawRow, progress func(n int)) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return common.ErrNoRows
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.importRowsTx(ctx, tx, rows, progress); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) importRowsTx(ctx context.Context, tx *sql.Tx, rows []model.RawRow, progress func(n int)) error {
	customerStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO customers (customer_id, country)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare customer statement: %w", err)
	}
	defer func() { _ = customerStmt.Close() }()

	productStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO products (stock_code, description)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare product statement: %w", err)
	}
	defer func() { _ = productStmt.Close() }()

	invoiceStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO invoices (invoice_id, customer_id, invoice_date, total_amount)
		VALUES (?, ?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare invoice statement: %w", err)
	}
	defer func() { _ = invoiceStmt.Close() }()

	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO order_items (row_hash, invoice_id, stock_code, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare order item statement: %w", err)
	}
	defer func() { _ = itemStmt.Close() }()

	// Entities are created first seen wins: the first row referencing a
	// customer or product defines it, later rows cannot change it.
	seenCustomers := make(map[int64]struct{})
	seenProducts := make(map[string]struct{})
	seenInvoices := make(map[string]struct{})

	for _, row := range rows {
		if _, ok := seenCustomers[row.CustomerID]; !ok {
			seenCustomers[row.CustomerID] = struct{}{}
			if _, err := customerStmt.ExecContext(ctx, row.CustomerID, row.Country); err != nil {
				return fmt.Errorf("failed to insert customer %d: %w", row.CustomerID, err)
			}
		}

		if _, ok := seenProducts[row.StockCode]; !ok {
			seenProducts[row.StockCode] = struct{}{}
			if _, err := productStmt.ExecContext(ctx, row.StockCode, row.Description); err != nil {
				return fmt.Errorf("failed to insert product %s: %w", row.StockCode, err)
			}
		}

		if _, ok := seenInvoices[row.InvoiceID]; !ok {
			seenInvoices[row.InvoiceID] = struct{}{}
			if _, err := invoiceStmt.ExecContext(ctx, row.InvoiceID, row.CustomerID,
				row.InvoiceDate.UTC().Format(sqliteTimeLayout)); err != nil {
				return fmt.Errorf("failed to insert invoice %s: %w", row.InvoiceID, err)
			}
		}

		if _, err := itemStmt.ExecContext(ctx,
			row.GenerateHash(),
			row.InvoiceID,
			row.StockCode,
			row.Quantity,
			roundCents(row.UnitPrice),
			roundCents(row.LineTotal()),
		); err != nil {
			return fmt.Errorf("failed to insert order item for invoice %s: %w", row.InvoiceID, err)
		}

		if progress != nil {
			progress(1)
		}
	}

	// Derive invoice totals from line items. Totals are never taken
	// from a source field.
	if _, err := tx.ExecContext(ctx, `
		UPDATE invoices
		SET total_amount = ROUND(COALESCE(
			(SELECT SUM(oi.line_total) FROM order_items oi WHERE oi.invoice_id = invoices.invoice_id),
			0), 2)
	`); err != nil {
		return fmt.Errorf("failed to compute invoice totals: %w", err)
	}

	return nil
}

// Counts reports the stored entity counts for import verification.
func (s *SQLiteStorage) Counts(ctx context.Context) (model.EntityCounts, error) {
	var counts model.EntityCounts
	if err := validateContext(ctx); err != nil {
		return counts, err
	}

	tables := []struct {
		name string
		dst  *int
	}{
		{"customers", &counts.Customers},
		{"products", &counts.Products},
		{"invoices", &counts.Invoices},
		{"order_items", &counts.OrderItems},
	}

	for _, table := range tables {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table.name)
		if err := s.db.QueryRowContext(ctx, query).Scan(table.dst); err != nil {
			return model.EntityCounts{}, fmt.Errorf("failed to count %s: %w", table.name, err)
		}
	}

	return counts, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
