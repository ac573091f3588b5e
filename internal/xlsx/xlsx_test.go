package xlsx

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leefowlercu/docexport/internal/document"
)

func budgetDoc() *document.Document {
	return document.New("Budget",
		&document.Table{
			ID:      "Accounts",
			Columns: []string{"Name"},
			Rows:    [][]string{{"Checking"}},
		},
		&document.Table{
			ID:      "Expenses",
			Columns: []string{"Item", "Amount"},
			Rows:    [][]string{{"Rent", "1200"}, {"Food", "350.5"}},
		},
	)
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExport_OneSheetPerTable(t *testing.T) {
	data, err := NewExporter().Export(context.Background(), budgetDoc(), url.Values{})
	require.NoError(t, err)

	// XLSX is a zip container
	require.True(t, bytes.HasPrefix(data, []byte{0x50, 0x4B}))

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Accounts", "Expenses"}, f.GetSheetList())

	rows, err := f.GetRows("Expenses")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Item", "Amount"},
		{"Rent", "1200"},
		{"Food", "350.5"},
	}, rows)
}

func TestExport_HeaderIsStyled(t *testing.T) {
	data, err := NewExporter().Export(context.Background(), budgetDoc(), url.Values{})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	style, err := f.GetCellStyle("Expenses", "B1")
	require.NoError(t, err)
	assert.NotZero(t, style)

	bodyStyle, err := f.GetCellStyle("Expenses", "A2")
	require.NoError(t, err)
	assert.Zero(t, bodyStyle)
}

func TestExport_TableIDOption(t *testing.T) {
	data, err := NewExporter().Export(context.Background(), budgetDoc(), url.Values{OptionTableID: {"Expenses"}})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Expenses"}, f.GetSheetList())
}

func TestExport_UnknownTable(t *testing.T) {
	_, err := NewExporter().Export(context.Background(), budgetDoc(), url.Values{OptionTableID: {"Missing"}})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestExport_EmptyDocument(t *testing.T) {
	_, err := NewExporter().Export(context.Background(), document.New("Empty"), url.Values{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter().Export(ctx, budgetDoc(), url.Values{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExport_LongAndDuplicateSheetNames(t *testing.T) {
	long := strings.Repeat("x", 40)
	doc := document.New("Names",
		&document.Table{ID: long, Columns: []string{"A"}},
		&document.Table{ID: long + "y", Columns: []string{"A"}},
		&document.Table{ID: "a/b", Columns: []string{"A"}},
	)

	data, err := NewExporter().Export(context.Background(), doc, url.Values{})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{
		strings.Repeat("x", 31),
		strings.Repeat("x", 27) + " (2)",
		"a_b",
	}, f.GetSheetList())
}

func TestExport_PreservesNumericLookingText(t *testing.T) {
	doc := document.New("Codes", &document.Table{
		ID:      "Codes",
		Columns: []string{"Zip", "Account", "Hex", "Grouped", "Padded", "Amount"},
		Rows:    [][]string{{"02134", "12345678901234567890", "0x1p-2", "1_000", " 7 ", "42"}},
	})

	data, err := NewExporter().Export(context.Background(), doc, url.Values{})
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Codes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"02134", "12345678901234567890", "0x1p-2", "1_000", " 7 ", "42"}, rows[1])

	cellType, err := f.GetCellType("Codes", "F2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"42", float64(42)},
		{"-1.5", -1.5},
		{"0", float64(0)},
		{"0.25", 0.25},
		{"+3", float64(3)},
		{"1e3", float64(1000)},
		{"123456789012345", float64(123456789012345)},
		{"abc", "abc"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"1e400", "1e400"},
		{"02134", "02134"},
		{"12345678901234567890", "12345678901234567890"},
		{"1_000", "1_000"},
		{"0x1p-2", "0x1p-2"},
		{" 7 ", " 7 "},
		{"1.", "1."},
		{".5", ".5"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cellValue(tt.in), "cellValue(%q)", tt.in)
	}
}
