package exporter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestXLSX_PickList(t *testing.T) {
	res := sampleResult()
	data, err := mustRenderer(t, "xlsx").RenderRecipientPickList(context.Background(), res.Products, res.RecipientTotals)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Pick List"}, f.GetSheetList())

	rows, err := f.GetRows("Pick List", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 8)

	assert.Equal(t, []string{"Pick List"}, rows[0])
	assert.Equal(t, []string{testTitle}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []string{"Pick List"}, rows[3])
	assert.Equal(t, []string{"Recipient", "Thin Mints", "Samoas", "Trefoils", "Total Boxes", "Amount"}, rows[4])
	assert.Equal(t, []string{"Ada", "3", "1", "0", "4", "24"}, rows[5])
	assert.Equal(t, []string{"Bea / Troop 7", "2", "2", "0", "4", "1212.5"}, rows[6])
	assert.Equal(t, []string{"Total", "5", "3", "0", "8", "1236.5"}, rows[7])

	// Amounts are numbers with a currency format.
	styleID, err := f.GetCellStyle("Pick List", "F6")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Contains(t, *style.CustomNumFmt, "#,##0.00")
}

func TestXLSX_Packet(t *testing.T) {
	res := sampleResult()
	totals, _ := res.Totals("Bea / Troop 7")
	orders, _ := res.Orders("Bea / Troop 7")

	data, err := mustRenderer(t, "xlsx").RenderRecipientPacket(context.Background(), "Bea / Troop 7", totals, orders)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Packet"}, f.GetSheetList())

	title, err := f.GetCellValue("Packet", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Pickup Packet: Bea / Troop 7", title)

	rows, err := f.GetRows("Packet")
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"Customer", "Pat <Lee>"})
	assert.Contains(t, rows, []string{"Total Boxes", "4"})
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pick List", "Pick List"},
		{"a/b:c*d?e[f]g\\h", "abcdefgh"},
		{"", "Sheet1"},
		{"[]", "Sheet1"},
		{"This name is far longer than Excel allows", "This name is far longer than Ex"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sheetName(tt.input))
		})
	}
}
