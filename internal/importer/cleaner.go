package importer

import (
	"github.com/tillsight/tillsight/internal/model"
)

// RejectReason identifies the first predicate a dropped row failed.
type RejectReason string

// Rejection buckets, in evaluation order.
const (
	RejectMissingCustomer    RejectReason = "missing customer"
	RejectMissingDescription RejectReason = "missing description"
	RejectDuplicate          RejectReason = "duplicate"
	RejectInvalidQuantity    RejectReason = "invalid quantity"
	RejectInvalidPrice       RejectReason = "invalid price"
	RejectBadInvoice         RejectReason = "bad invoice"
)

// RejectOrder lists the buckets in the order predicates are evaluated.
var RejectOrder = []RejectReason{
	RejectMissingCustomer,
	RejectMissingDescription,
	RejectDuplicate,
	RejectInvalidQuantity,
	RejectInvalidPrice,
	RejectBadInvoice,
}

// CleanResult is the reduced row set plus per-predicate rejection counts.
type CleanResult struct {
	Rejected map[RejectReason]int
	Rows     []model.RawRow
	Total    int
}

// Removed returns the total number of dropped rows.
func (c *CleanResult) Removed() int {
	n := 0
	for _, count := range c.Rejected {
		n += count
	}
	return n
}

// Clean applies the validity predicates in order and keeps the rows that
// satisfy all of them. A row is attributed to exactly one bucket: the
// first predicate it fails. Rows are never errors; they are dropped and
// counted.
//
// Predicate order: customer present, description present, not a
// duplicate of an earlier row (exact field-wise match), quantity > 0,
// unit price > 0, invoice identifier and date usable.
func Clean(rows []model.RawRow) CleanResult {
	result := CleanResult{
		Rejected: make(map[RejectReason]int),
		Rows:     make([]model.RawRow, 0, len(rows)),
		Total:    len(rows),
	}

	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if !row.HasCustomer {
			result.Rejected[RejectMissingCustomer]++
			continue
		}
		if !row.HasDescription {
			result.Rejected[RejectMissingDescription]++
			continue
		}

		hash := row.GenerateHash()
		if _, dup := seen[hash]; dup {
			result.Rejected[RejectDuplicate]++
			continue
		}
		seen[hash] = struct{}{}

		if row.Quantity <= 0 {
			result.Rejected[RejectInvalidQuantity]++
			continue
		}
		if row.UnitPrice <= 0 {
			result.Rejected[RejectInvalidPrice]++
			continue
		}
		if row.InvoiceID == "" || row.InvoiceDate.IsZero() {
			result.Rejected[RejectBadInvoice]++
			continue
		}

		result.Rows = append(result.Rows, row)
	}

	return result
}
