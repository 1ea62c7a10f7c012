package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tillsight/tillsight/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testRow(customer int64, stock, desc string, qty int64, price float64, invoice string, date time.Time, country string) model.RawRow {
	return model.RawRow{
		CustomerID:     customer,
		StockCode:      stock,
		Description:    desc,
		Quantity:       qty,
		UnitPrice:      price,
		InvoiceID:      invoice,
		InvoiceDate:    date,
		Country:        country,
		HasCustomer:    true,
		HasDescription: true,
	}
}

// testDataset is two customers, three invoices, three products across
// two countries and two months.
func testDataset() []model.RawRow {
	d1 := time.Date(2011, 11, 3, 10, 15, 0, 0, time.UTC)
	d2 := time.Date(2011, 12, 5, 14, 30, 0, 0, time.UTC)

	return []model.RawRow{
		testRow(1, "85123A", "WHITE HANGING HEART", 5, 2.0, "INV-A", d1, "United Kingdom"),
		testRow(1, "71053", "WHITE METAL LANTERN", 2, 7.5, "INV-A", d1, "United Kingdom"),
		testRow(1, "85123A", "WHITE HANGING HEART", 3, 2.0, "INV-B", d2, "United Kingdom"),
		testRow(2, "21730", "GLASS STAR FROSTED", 4, 4.25, "INV-C", d2, "France"),
	}
}

func importDataset(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	if err := store.ImportRows(context.Background(), testDataset(), nil); err != nil {
		t.Fatalf("Failed to import dataset: %v", err)
	}
}
