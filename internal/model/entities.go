package model

import "time"

// Customer is created from the first cleaned row referencing its ID and
// is immutable thereafter.
type Customer struct {
	CreatedAt time.Time
	Country   string
	ID        int64
}

// Product is keyed by its stock code.
type Product struct {
	CreatedAt   time.Time
	StockCode   string
	Description string
}

// Invoice belongs to exactly one customer. TotalAmount is derived as the
// sum of its order items' line totals, never taken from a source field.
type Invoice struct {
	Date        time.Time
	CreatedAt   time.Time
	ID          string
	CustomerID  int64
	TotalAmount float64
}

// OrderItem is one line of an invoice. RowHash is the content hash of
// the originating raw row and keeps re-imports idempotent.
type OrderItem struct {
	CreatedAt time.Time
	InvoiceID string
	StockCode string
	RowHash   string
	ID        int64
	Quantity  int64
	UnitPrice float64
	LineTotal float64
}

// EntityCounts reports stored record counts for import verification.
type EntityCounts struct {
	Customers  int
	Products   int
	Invoices   int
	OrderItems int
}
