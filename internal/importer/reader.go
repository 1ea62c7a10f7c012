// Package importer loads raw transaction rows from spreadsheet exports
// and reduces them to the cleaned set the normalizer persists.
package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tillsight/tillsight/internal/common"
	enc "github.com/tillsight/tillsight/internal/encoding"
	"github.com/tillsight/tillsight/internal/model"
)

// Reader parses CSV/TSV line-item exports into raw rows. Column headers
// are matched case-insensitively against known aliases, so exports from
// different platform versions ("Invoice", "InvoiceNo", "invoice_id")
// all resolve to the same fields.
type Reader struct{}

// NewReader creates a reader for spreadsheet exports.
func NewReader() *Reader {
	return &Reader{}
}

// headerAliases maps canonical field names to accepted column headers,
// lowercased with spaces and underscores removed.
var headerAliases = map[string][]string{
	"invoice":     {"invoice", "invoiceno", "invoiceid"},
	"stock_code":  {"stockcode"},
	"description": {"description"},
	"quantity":    {"quantity", "qty"},
	"date":        {"invoicedate", "date", "orderdate"},
	"price":       {"price", "unitprice"},
	"customer":    {"customerid", "customer"},
	"country":     {"country"},
}

// Columns the file must declare; the remaining fields may be absent and
// simply fail cleaning predicates row by row.
var requiredColumns = []string{"invoice", "stock_code", "quantity", "date", "price"}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"02/01/2006 15:04",
}

// ReadFile loads all raw rows from the file at path. Missing or
// unreadable files are fatal; individual malformed cells are not.
func (r *Reader) ReadFile(path string) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Read(f)
}

// Read loads all raw rows from the given reader.
func (r *Reader) Read(src io.Reader) ([]model.RawRow, error) {
	utf8r, err := enc.NewUTF8Reader(src)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)
	comma, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, common.ErrNoRows
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]model.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, parseRow(record, cols))
	}

	return rows, nil
}

// sniffDelimiter inspects the header line for the field separator.
// Exports in the wild use commas, semicolons, or tabs.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("peek header: %w", err)
	}

	line := string(buf)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	switch {
	case strings.Count(line, "\t") > strings.Count(line, ","):
		return '\t', nil
	case strings.Count(line, ";") > strings.Count(line, ","):
		return ';', nil
	default:
		return ',', nil
	}
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, cell := range header {
		name := normalizeHeader(cell)
		for field, aliases := range headerAliases {
			for _, alias := range aliases {
				if name == alias {
					if _, seen := cols[field]; !seen {
						cols[field] = i
					}
				}
			}
		}
	}

	for _, field := range requiredColumns {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, field)
		}
	}

	return cols, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one CSV record into a raw row. Malformed cells
// produce zero values that the cleaning predicates reject later; no
// error is raised per row.
func parseRow(record []string, cols map[string]int) model.RawRow {
	row := model.RawRow{
		InvoiceID:   cell(record, cols, "invoice"),
		StockCode:   cell(record, cols, "stock_code"),
		Description: cell(record, cols, "description"),
		Country:     cell(record, cols, "country"),
	}
	row.HasDescription = row.Description != ""

	if s := cell(record, cols, "customer"); s != "" {
		// Excel exports customer IDs as floats ("17850.0").
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			row.CustomerID = int64(f)
			row.HasCustomer = true
		}
	}

	if s := cell(record, cols, "quantity"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			row.Quantity = n
		} else if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			// Excel writes integer quantities as "6.0". A fractional
			// quantity is malformed and stays zero for the cleaner.
			row.Quantity = int64(f)
		}
	}

	if s := cell(record, cols, "price"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			row.UnitPrice = f
		}
	}

	if s := cell(record, cols, "date"); s != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				row.InvoiceDate = t.UTC()
				break
			}
		}
	}

	return row
}

func cell(record []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
