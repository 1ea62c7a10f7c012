// Package storage persists the normalized retail entities in SQLite and
// serves the read-only aggregates the analysis and report stages run.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// sqliteTimeLayout is the format invoice dates are stored and scanned
// with. Keeping a fixed DATETIME string makes julianday/strftime in the
// aggregate queries deterministic regardless of driver time handling.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteStorage implements the relational store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys enforce the invoice/order-item cascade and the
	// customer/product delete restriction.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// DeleteInvoice removes an invoice; its order items cascade away.
func (s *SQLiteStorage) DeleteInvoice(ctx context.Context, invoiceID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(invoiceID, "invoiceID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE invoice_id = ?`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", invoiceID, err)
	}
	return nil
}

// DeleteCustomer removes a customer. The delete is rejected by the
// schema while any invoice still references the customer.
func (s *SQLiteStorage) DeleteCustomer(ctx context.Context, customerID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE customer_id = ?`, customerID); err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	return nil
}
