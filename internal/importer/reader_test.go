package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillsight/tillsight/internal/common"
)

func TestReader_Read(t *testing.T) {
	input := strings.Join([]string{
		"Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country",
		"536365,85123A,WHITE HANGING HEART T-LIGHT HOLDER,6,2010-12-01 08:26:00,2.55,17850.0,United Kingdom",
		"536365,71053,WHITE METAL LANTERN,6,2010-12-01 08:26:00,3.39,17850.0,United Kingdom",
		"C536379,D,Discount,-1,2010-12-01 09:41:00,27.50,14527.0,United Kingdom",
	}, "\n")

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "536365", first.InvoiceID)
	assert.Equal(t, "85123A", first.StockCode)
	assert.Equal(t, "WHITE HANGING HEART T-LIGHT HOLDER", first.Description)
	assert.Equal(t, int64(6), first.Quantity)
	assert.InDelta(t, 2.55, first.UnitPrice, 0.0001)
	assert.Equal(t, int64(17850), first.CustomerID)
	assert.True(t, first.HasCustomer)
	assert.True(t, first.HasDescription)
	assert.Equal(t, "United Kingdom", first.Country)
	assert.Equal(t, time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC), first.InvoiceDate)

	// Credit note rows parse; the cleaner rejects them later.
	credit := rows[2]
	assert.Equal(t, int64(-1), credit.Quantity)
}

func TestReader_MissingFields(t *testing.T) {
	input := strings.Join([]string{
		"Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country",
		"536414,22139,,56,2010-12-01 11:52:00,0.0,,United Kingdom",
		"536367,84879,ASSORTED COLOUR BIRD ORNAMENT,32,not-a-date,1.69,13047.0,United Kingdom",
	}, "\n")

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.False(t, rows[0].HasCustomer)
	assert.False(t, rows[0].HasDescription)
	assert.True(t, rows[1].InvoiceDate.IsZero())
}

func TestReader_HeaderAliases(t *testing.T) {
	// Older exports use InvoiceNo/UnitPrice/CustomerID headers.
	input := strings.Join([]string{
		"InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country",
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom",
	}, "\n")

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "536365", rows[0].InvoiceID)
	assert.InDelta(t, 2.55, rows[0].UnitPrice, 0.0001)
	assert.Equal(t, int64(17850), rows[0].CustomerID)
}

func TestReader_QuantityParsing(t *testing.T) {
	input := strings.Join([]string{
		"Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country",
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom",
		"536366,85123A,WHITE HANGING HEART,6.0,2010-12-01 08:26:00,2.55,17850,United Kingdom",
		"536367,85123A,WHITE HANGING HEART,6.5,2010-12-01 08:26:00,2.55,17850,United Kingdom",
	}, "\n")

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(6), rows[0].Quantity)
	// "6.0" is the Excel integer artifact; "6.5" is malformed and must
	// stay zero so the cleaner rejects the row.
	assert.Equal(t, int64(6), rows[1].Quantity)
	assert.Equal(t, int64(0), rows[2].Quantity)
}

func TestReader_TabSeparated(t *testing.T) {
	input := "Invoice\tStockCode\tDescription\tQuantity\tInvoiceDate\tPrice\tCustomer ID\tCountry\n" +
		"536365\t85123A\tWHITE HANGING HEART\t6\t2010-12-01 08:26:00\t2.55\t17850\tUnited Kingdom\n"

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "85123A", rows[0].StockCode)
}

func TestReader_MissingColumn(t *testing.T) {
	input := "Description,Quantity,Price\nWIDGET,1,2.0\n"

	reader := NewReader()
	_, err := reader.Read(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingColumn)
}

func TestReader_SkipsBlankLines(t *testing.T) {
	input := strings.Join([]string{
		"Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country",
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom",
		",,,,,,,",
	}, "\n")

	reader := NewReader()
	rows, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
