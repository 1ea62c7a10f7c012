package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tillsight/tillsight/internal/model"
)

func makeRow(customer int64, stock, desc string, qty int64, price float64, invoice string, date time.Time) model.RawRow {
	return model.RawRow{
		CustomerID:     customer,
		StockCode:      stock,
		Description:    desc,
		Quantity:       qty,
		UnitPrice:      price,
		InvoiceID:      invoice,
		InvoiceDate:    date,
		Country:        "United Kingdom",
		HasCustomer:    true,
		HasDescription: desc != "",
	}
}

func TestClean(t *testing.T) {
	day := time.Date(2011, 12, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		rejected map[RejectReason]int
		name     string
		rows     []model.RawRow
		kept     int
	}{
		{
			name: "all valid",
			rows: []model.RawRow{
				makeRow(1, "85123A", "WHITE HANGING HEART", 6, 2.55, "536365", day),
				makeRow(2, "71053", "WHITE METAL LANTERN", 6, 3.39, "536366", day),
			},
			kept:     2,
			rejected: map[RejectReason]int{},
		},
		{
			name: "missing customer",
			rows: []model.RawRow{
				func() model.RawRow {
					r := makeRow(0, "85123A", "WHITE HANGING HEART", 6, 2.55, "536365", day)
					r.HasCustomer = false
					return r
				}(),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectMissingCustomer: 1},
		},
		{
			name: "missing description",
			rows: []model.RawRow{
				makeRow(1, "85123A", "", 6, 2.55, "536365", day),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectMissingDescription: 1},
		},
		{
			name: "negative quantity lands in the quantity bucket, not price",
			rows: []model.RawRow{
				makeRow(1, "85123A", "WHITE HANGING HEART", -1, 2.55, "C536365", day),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectInvalidQuantity: 1},
		},
		{
			name: "zero price",
			rows: []model.RawRow{
				makeRow(1, "85123A", "WHITE HANGING HEART", 6, 0, "536365", day),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectInvalidPrice: 1},
		},
		{
			name: "identical rows collapse to one",
			rows: []model.RawRow{
				makeRow(1, "85123A", "WHITE HANGING HEART", 6, 2.55, "536365", day),
				makeRow(1, "85123A", "WHITE HANGING HEART", 6, 2.55, "536365", day),
			},
			kept:     1,
			rejected: map[RejectReason]int{RejectDuplicate: 1},
		},
		{
			name: "first failing predicate owns the rejection",
			rows: []model.RawRow{
				// Fails both quantity and price, counted once under quantity.
				makeRow(1, "85123A", "WHITE HANGING HEART", -3, -1.0, "536365", day),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectInvalidQuantity: 1},
		},
		{
			name: "unusable invoice date",
			rows: []model.RawRow{
				makeRow(1, "85123A", "WHITE HANGING HEART", 6, 2.55, "536365", time.Time{}),
			},
			kept:     0,
			rejected: map[RejectReason]int{RejectBadInvoice: 1},
		},
		{
			name:     "empty input",
			rows:     nil,
			kept:     0,
			rejected: map[RejectReason]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clean(tt.rows)

			assert.Len(t, result.Rows, tt.kept)
			assert.Equal(t, len(tt.rows), result.Total)
			assert.Equal(t, tt.rejected, result.Rejected)
			assert.Equal(t, len(tt.rows)-tt.kept, result.Removed())
		})
	}
}

func TestClean_KeptRowsSatisfyAllPredicates(t *testing.T) {
	day := time.Date(2011, 12, 1, 10, 0, 0, 0, time.UTC)

	rows := []model.RawRow{
		makeRow(1, "A", "PRODUCT A", 5, 2.0, "INV1", day),
		makeRow(0, "B", "PRODUCT B", 5, 2.0, "INV1", day),
		makeRow(2, "C", "", 5, 2.0, "INV2", day),
		makeRow(3, "D", "PRODUCT D", 0, 2.0, "INV3", day),
		makeRow(4, "E", "PRODUCT E", 5, -2.0, "INV4", day),
		makeRow(1, "A", "PRODUCT A", 5, 2.0, "INV1", day),
	}
	rows[1].HasCustomer = false

	result := Clean(rows)

	// A row is kept iff it satisfies every predicate.
	for _, row := range result.Rows {
		assert.True(t, row.HasCustomer)
		assert.True(t, row.HasDescription)
		assert.Positive(t, row.Quantity)
		assert.Positive(t, row.UnitPrice)
		assert.False(t, row.InvoiceDate.IsZero())
	}
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 5, result.Removed())
}
