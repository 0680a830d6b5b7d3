package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/normalize"
	"github.com/joseph-ayodele/recibos-extractor/internal/stats"
)

func sampleRows() []normalize.Row {
	return []normalize.Row{
		{ReceiptID: "123", Seller: "ANA", Customer: "CLINICA X", Description: "TIRZEPATIDE 50 MG", Quantity: "2,00", UnitPrice: decimal.NewFromInt(1080)},
		{ReceiptID: "456", Seller: "BRUNO", Description: "CANETA", Quantity: "1", UnitPrice: decimal.Zero},
	}
}

func TestWorkbookXLSX(t *testing.T) {
	rows := sampleRows()
	b, err := NewService(nil).WorkbookXLSX(rows, stats.BySeller(rows))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetReceipts, SheetStats}, f.GetSheetList())

	got, err := f.GetRows(SheetReceipts)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, receiptHeaders, got[0])
	assert.Equal(t, []string{"123", "ANA", "CLINICA X", "TIRZEPATIDE 50 MG", "2,00", "1.080,00"}, got[1])
	assert.Equal(t, "", valueAt(got[2], 5), "zero price renders empty")

	statRows, err := f.GetRows(SheetStats)
	require.NoError(t, err)
	require.Len(t, statRows, 3)
	assert.Equal(t, statsHeaders, statRows[0])
	assert.Equal(t, "ANA", statRows[1][0])
	assert.Equal(t, "BRUNO", statRows[2][0])
}

func valueAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func TestWorkbookWithoutStats(t *testing.T) {
	b, err := NewService(nil).WorkbookXLSX(sampleRows(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{SheetReceipts}, f.GetSheetList())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultFileName(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)))
	require.NoError(t, NewService(nil).WriteFile(path, sampleRows(), nil))
	assert.FileExists(t, path)
	assert.Equal(t, "recibos_extraidos_20250304_050607.xlsx", filepath.Base(path))
}

func TestRecordsJSON(t *testing.T) {
	records := []entity.ReceiptRecord{
		{ID: "123", Seller: "ANA", Products: []entity.ProductLine{
			{Description: "TIRZEPATIDE 50 MG/2ML", Quantity: "1,00", UnitPrice: "900,00", Unit: "UN"},
		}},
		{ID: "PAGINA_2"},
	}
	b, err := NewService(nil).RecordsJSON(records)
	require.NoError(t, err)
	assert.Nil(t, records[1].Products, "input is not modified")

	var back []map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 2)
	assert.Equal(t, "123", back[0]["numero"])
	assert.NotContains(t, string(b), `"UN"`)
	assert.Equal(t, []any{}, back[1]["produtos"])
}

func TestValidateRecordsJSON(t *testing.T) {
	assert.NoError(t, ValidateRecordsJSON([]byte(`[{"produtos":[]}]`)))

	err := ValidateRecordsJSON([]byte(`[{"produtos":[{"descricao":"X","quantidade":"","valor_unitario":"-"}]}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Error(t, ValidateRecordsJSON([]byte(`[{"numero":1,"produtos":[]}]`)))
	assert.Error(t, ValidateRecordsJSON([]byte(`{`)))
}
