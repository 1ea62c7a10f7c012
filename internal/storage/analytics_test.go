package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillsight/tillsight/internal/common"
	"github.com/tillsight/tillsight/internal/model"
)

func TestLatestInvoiceDate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.LatestInvoiceDate(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	importDataset(t, store)

	latest, err := store.LatestInvoiceDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2011, 12, 5, 14, 30, 0, 0, time.UTC), latest)
}

func TestCustomerMetrics(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	d1 := time.Date(2011, 11, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2011, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := []model.RawRow{
		testRow(1, "P1", "PRODUCT ONE", 5, 2.0, "A", d1, "United Kingdom"),
		testRow(1, "P1", "PRODUCT ONE", 3, 2.0, "B", d2, "United Kingdom"),
	}
	require.NoError(t, store.ImportRows(ctx, rows, nil))

	metrics, err := store.CustomerMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.Equal(t, int64(1), m.CustomerID)
	// Recency derives from the later invoice date.
	assert.Equal(t, d2, m.LastPurchase)
	assert.Equal(t, 2, m.Frequency)
	assert.InDelta(t, 16.0, m.Monetary, 0.001)
}

func TestTopProducts(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	// Revenue: GLASS STAR 17.00, WHITE HANGING HEART 16.00, LANTERN 15.00.
	products, err := store.TopProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "21730", products[0].StockCode)
	assert.InDelta(t, 17.0, products[0].Revenue, 0.001)

	all, err := store.TopProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "85123A", all[1].StockCode)
	assert.Equal(t, "71053", all[2].StockCode)
}

func TestSalesByCountry(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	sales, err := store.SalesByCountry(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.Equal(t, "United Kingdom", sales[0].Country)
	assert.InDelta(t, 31.0, sales[0].Revenue, 0.001)
	assert.Equal(t, 1, sales[0].Customers)

	assert.Equal(t, "France", sales[1].Country)
	assert.InDelta(t, 17.0, sales[1].Revenue, 0.001)
}

func TestRevenueByMonth(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	series, err := store.RevenueByMonth(ctx)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "2011-11", series[0].Month)
	assert.InDelta(t, 25.0, series[0].Revenue, 0.001)
	assert.Equal(t, "2011-12", series[1].Month)
	assert.InDelta(t, 23.0, series[1].Revenue, 0.001)
}

func TestCustomerLifetimeValues(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	values, err := store.CustomerLifetimeValues(ctx)
	require.NoError(t, err)
	require.Len(t, values, 2)

	total := values[0] + values[1]
	assert.InDelta(t, 48.0, total, 0.001)
}

func TestPriceVolume(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	pricing, err := store.PriceVolume(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pricing, 3)

	// Ordered by units sold: hanging heart sold 8 across two invoices.
	assert.Equal(t, "WHITE HANGING HEART", pricing[0].Description)
	assert.Equal(t, int64(8), pricing[0].QuantitySold)
	assert.InDelta(t, 2.0, pricing[0].AvgPrice, 0.001)
}

func TestGetSummary(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	importDataset(t, store)

	summary, err := store.GetSummary(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 48.0, summary.TotalRevenue, 0.001)
	assert.Equal(t, 2, summary.Customers)
	assert.Equal(t, 3, summary.Invoices)
	assert.Equal(t, 3, summary.Products)
	assert.Equal(t, 2, summary.Countries)
	assert.InDelta(t, 24.0, summary.AvgLTV, 0.001)
}

func TestGetSummary_EmptyStore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	summary, err := store.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.Customers)
	assert.Zero(t, summary.AvgLTV)
}
