package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tillsight/tillsight/internal/common"
)

// CustomerMetrics is the per-customer aggregate the RFM calculator
// scores: last purchase date, distinct invoice count, and net spend.
type CustomerMetrics struct {
	LastPurchase time.Time
	Country      string
	CustomerID   int64
	Frequency    int
	Monetary     float64
}

// ProductRevenue is one row of the top-products aggregate.
type ProductRevenue struct {
	StockCode   string
	Description string
	Revenue     float64
	Quantity    int64
}

// CountrySales is revenue and distinct customer count for one country.
type CountrySales struct {
	Country   string
	Revenue   float64
	Customers int
}

// MonthlyRevenue is one point of the monthly revenue series.
type MonthlyRevenue struct {
	Month   string
	Revenue float64
}

// ProductPricing relates a product's average unit price to units sold.
type ProductPricing struct {
	Description  string
	AvgPrice     float64
	QuantitySold int64
}

// Summary holds the headline KPI values for the report.
type Summary struct {
	TotalRevenue float64
	AvgLTV       float64
	Customers    int
	Invoices     int
	Products     int
	Countries    int
}

// LatestInvoiceDate returns the most recent invoice date in the store,
// or common.ErrNotFound when no invoices exist.
func (s *SQLiteStorage) LatestInvoiceDate(ctx context.Context) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(invoice_date) FROM invoices`).Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest invoice date: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, common.ErrNotFound
	}

	return parseStoredTime(raw.String)
}

// CustomerMetrics aggregates last purchase, distinct invoice count, and
// summed line totals for every customer with at least one invoice.
// Customers with non-positive net spend are included; the calculator
// applies the exclusion rule.
func (s *SQLiteStorage) CustomerMetrics(ctx context.Context) ([]CustomerMetrics, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.customer_id,
			c.country,
			MAX(i.invoice_date) AS last_purchase,
			COUNT(DISTINCT i.invoice_id) AS frequency,
			ROUND(SUM(oi.line_total), 2) AS monetary
		FROM customers c
		JOIN invoices i ON i.customer_id = c.customer_id
		JOIN order_items oi ON oi.invoice_id = i.invoice_id
		GROUP BY c.customer_id, c.country
		ORDER BY c.customer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []CustomerMetrics
	for rows.Next() {
		var m CustomerMetrics
		var lastPurchase string
		if err := rows.Scan(&m.CustomerID, &m.Country, &lastPurchase, &m.Frequency, &m.Monetary); err != nil {
			return nil, fmt.Errorf("failed to scan customer metrics: %w", err)
		}
		if m.LastPurchase, err = parseStoredTime(lastPurchase); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// TopProducts returns the n products with the highest summed line totals.
func (s *SQLiteStorage) TopProducts(ctx context.Context, n int) ([]ProductRevenue, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.stock_code,
			p.description,
			ROUND(SUM(oi.line_total), 2) AS total_revenue,
			SUM(oi.quantity) AS total_quantity
		FROM order_items oi
		JOIN products p ON oi.stock_code = p.stock_code
		GROUP BY p.stock_code, p.description
		ORDER BY total_revenue DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []ProductRevenue
	for rows.Next() {
		var p ProductRevenue
		if err := rows.Scan(&p.StockCode, &p.Description, &p.Revenue, &p.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product revenue: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// SalesByCountry returns revenue and distinct customer counts per
// country, highest revenue first.
func (s *SQLiteStorage) SalesByCountry(ctx context.Context, limit int) ([]CountrySales, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.country,
			ROUND(SUM(oi.line_total), 2) AS total_revenue,
			COUNT(DISTINCT c.customer_id) AS customer_count
		FROM customers c
		JOIN invoices i ON c.customer_id = i.customer_id
		JOIN order_items oi ON i.invoice_id = oi.invoice_id
		GROUP BY c.country
		ORDER BY total_revenue DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by country: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sales []CountrySales
	for rows.Next() {
		var cs CountrySales
		if err := rows.Scan(&cs.Country, &cs.Revenue, &cs.Customers); err != nil {
			return nil, fmt.Errorf("failed to scan country sales: %w", err)
		}
		sales = append(sales, cs)
	}

	return sales, rows.Err()
}

// RevenueByMonth returns the monthly revenue series across the full
// date range, in chronological order.
func (s *SQLiteStorage) RevenueByMonth(ctx context.Context) ([]MonthlyRevenue, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			strftime('%Y-%m', i.invoice_date) AS month,
			ROUND(SUM(oi.line_total), 2) AS monthly_revenue
		FROM invoices i
		JOIN order_items oi ON i.invoice_id = oi.invoice_id
		GROUP BY month
		ORDER BY month
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly revenue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var series []MonthlyRevenue
	for rows.Next() {
		var mr MonthlyRevenue
		if err := rows.Scan(&mr.Month, &mr.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		series = append(series, mr)
	}

	return series, rows.Err()
}

// CustomerLifetimeValues returns the positive per-customer lifetime
// value distribution.
func (s *SQLiteStorage) CustomerLifetimeValues(ctx context.Context) ([]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ROUND(SUM(oi.line_total), 2) AS customer_ltv
		FROM customers c
		JOIN invoices i ON c.customer_id = i.customer_id
		JOIN order_items oi ON i.invoice_id = oi.invoice_id
		GROUP BY c.customer_id
		HAVING customer_ltv > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lifetime values: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan lifetime value: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// PriceVolume relates average unit price to units sold for the limit
// best-selling products by quantity.
func (s *SQLiteStorage) PriceVolume(ctx context.Context, limit int) ([]ProductPricing, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.description,
			ROUND(AVG(oi.unit_price), 2) AS avg_price,
			SUM(oi.quantity) AS quantity_sold
		FROM order_items oi
		JOIN products p ON oi.stock_code = p.stock_code
		GROUP BY p.stock_code, p.description
		ORDER BY quantity_sold DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price/volume: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pricing []ProductPricing
	for rows.Next() {
		var pp ProductPricing
		if err := rows.Scan(&pp.Description, &pp.AvgPrice, &pp.QuantitySold); err != nil {
			return nil, fmt.Errorf("failed to scan price/volume: %w", err)
		}
		pricing = append(pricing, pp)
	}

	return pricing, rows.Err()
}

// GetSummary computes the headline KPI values. Average LTV covers
// customers with positive net spend.
func (s *SQLiteStorage) GetSummary(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := validateContext(ctx); err != nil {
		return summary, err
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT ROUND(SUM(total_amount), 2) FROM invoices), 0),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM invoices),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(DISTINCT country) FROM customers)
	`).Scan(&summary.TotalRevenue, &summary.Customers, &summary.Invoices, &summary.Products, &summary.Countries)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}

	var avgLTV sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT ROUND(AVG(ltv), 2) FROM (
			SELECT SUM(oi.line_total) AS ltv
			FROM customers c
			JOIN invoices i ON c.customer_id = i.customer_id
			JOIN order_items oi ON i.invoice_id = oi.invoice_id
			GROUP BY c.customer_id
			HAVING ltv > 0
		)
	`).Scan(&avgLTV)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query average LTV: %w", err)
	}
	if avgLTV.Valid {
		summary.AvgLTV = avgLTV.Float64
	}

	return summary, nil
}

func parseStoredTime(raw string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", raw, err)
	}
	return t, nil
}
