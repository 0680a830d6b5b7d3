// Package export writes extraction results as an XLSX workbook or a JSON document.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/normalize"
	"github.com/joseph-ayodele/recibos-extractor/internal/stats"
)

const (
	SheetReceipts = "Recibos"
	SheetStats    = "Estatísticas por Vendedor"
)

var (
	receiptHeaders = []string{"Nº Recibo", "Vendedor", "Cliente", "Descrição do Produto", "Quantidade", "Valor Unitário"}
	statsHeaders   = []string{"Vendedor", "Produto", "Quantidade Total", "Valor Total",
		"Preço Médio por MG", "Preço Mínimo por MG", "Preço Máximo por MG"}

	receiptWidths = []float64{15, 30, 35, 40, 12, 15}
	statsWidths   = []float64{30, 40, 18, 18, 20, 20, 20}
)

// Service produces workbooks from normalized rows.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DefaultFileName is recibos_extraidos_<YYYYMMDD_HHMMSS>.xlsx.
func DefaultFileName(now time.Time) string {
	return "recibos_extraidos_" + now.Format("20060102_150405") + ".xlsx"
}

// WorkbookXLSX returns the workbook bytes. The stats sheet is written only when
// sellerStats is not empty.
func (s *Service) WorkbookXLSX(rows []normalize.Row, sellerStats []stats.SellerProduct) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetReceipts); err != nil {
		return nil, common.NewAppError(common.CodeExport, "rename sheet", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "create styles", err)
	}
	if err := writeReceipts(f, st, rows); err != nil {
		return nil, common.NewAppError(common.CodeExport, "write receipts sheet", err)
	}
	if len(sellerStats) > 0 {
		if _, err := f.NewSheet(SheetStats); err != nil {
			return nil, common.NewAppError(common.CodeExport, "create stats sheet", err)
		}
		if err := writeStats(f, st, sellerStats); err != nil {
			return nil, common.NewAppError(common.CodeExport, "write stats sheet", err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "xlsx write", err)
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"stats", len(sellerStats),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes the workbook to path, creating parent directories.
func (s *Service) WriteFile(path string, rows []normalize.Row, sellerStats []stats.SellerProduct) error {
	b, err := s.WorkbookXLSX(rows, sellerStats)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return common.NewAppError(common.CodeExport, "create output dir", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return common.NewAppError(common.CodeExport, fmt.Sprintf("write %s", path), err)
	}
	s.logger.Info("export.file.ok", "path", path, "bytes", len(b))
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeReceipts(f *excelize.File, st styles, rows []normalize.Row) error {
	if err := writeHeader(f, SheetReceipts, receiptHeaders, receiptWidths, st.receiptHeader); err != nil {
		return err
	}
	for i, r := range rows {
		row := i + 2
		values := []any{r.ReceiptID, r.Seller, r.Customer, r.Description, r.Quantity, normalize.FormatBRL(r.UnitPrice)}
		if err := setRow(f, SheetReceipts, row, values); err != nil {
			return err
		}
		style := st.rowWhite
		if row%2 == 1 {
			style = st.rowGray
		}
		if err := styleRow(f, SheetReceipts, row, len(values), style); err != nil {
			return err
		}
	}
	return nil
}

// writeStats renders one block per seller, alternating block colors with a rule
// above each new seller.
func writeStats(f *excelize.File, st styles, sellerStats []stats.SellerProduct) error {
	if err := writeHeader(f, SheetStats, statsHeaders, statsWidths, st.statsHeader); err != nil {
		return err
	}
	block, current := 0, ""
	for i, sp := range sellerStats {
		row := i + 2
		values := []any{
			sp.Seller, sp.Product,
			sp.QuantityTotal.Round(2).InexactFloat64(),
			sp.ValueTotal.Round(2).InexactFloat64(),
			sp.AvgPerMG.Round(2).InexactFloat64(),
			sp.MinPerMG.Round(2).InexactFloat64(),
			sp.MaxPerMG.Round(2).InexactFloat64(),
		}
		if err := setRow(f, SheetStats, row, values); err != nil {
			return err
		}
		newBlock := i == 0 || sp.Seller != current
		if newBlock {
			block++
			current = sp.Seller
		}
		pick := st.block[(block+1)%2]
		if newBlock && i > 0 {
			pick = st.blockRuled[(block+1)%2]
		}
		if err := styleRow(f, SheetStats, row, 2, pick.text); err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStyle(SheetStats, first, first, pick.seller); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(3, row)
		to, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellStyle(SheetStats, from, to, pick.number); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, from, to, style)
}
