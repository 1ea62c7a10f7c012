// Package model defines the entities stored in the relational store and
// the raw spreadsheet row they are normalized from.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// RawRow is a single line item as it appears in the source spreadsheet.
// Any field may be absent or malformed; HasCustomer/HasDescription track
// presence separately from the zero value.
type RawRow struct {
	InvoiceDate    time.Time
	InvoiceID      string
	StockCode      string
	Description    string
	Country        string
	CustomerID     int64
	Quantity       int64
	UnitPrice      float64
	HasCustomer    bool
	HasDescription bool
}

// LineTotal returns quantity × unit price for this row.
func (r *RawRow) LineTotal() float64 {
	return float64(r.Quantity) * r.UnitPrice
}

// GenerateHash creates a unique hash over all raw fields for duplicate
// detection and idempotent order-item inserts.
func (r *RawRow) GenerateHash() string {
	data := fmt.Sprintf("%d:%s:%s:%d:%.4f:%s:%s:%s",
		r.CustomerID,
		r.StockCode,
		r.Description,
		r.Quantity,
		r.UnitPrice,
		r.InvoiceID,
		r.InvoiceDate.Format(time.RFC3339),
		r.Country)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
