package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

// Row is one product of one receipt, flattened for export.
type Row struct {
	ReceiptID   string          `json:"numero"`
	Seller      string          `json:"vendedor"`
	Customer    string          `json:"cliente"`
	Description string          `json:"descricao"`
	Quantity    string          `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"valor_unitario"`
}

// Rows flattens records into one row per product, canonicalizing descriptions and
// parsing unit prices. Rows with no description, or with neither a quantity nor a
// positive price, are dropped.
func Rows(records []entity.ReceiptRecord) []Row {
	var rows []Row
	for _, rec := range records {
		for _, p := range rec.Products {
			row := Row{
				ReceiptID:   strings.TrimSpace(rec.ID),
				Seller:      strings.TrimSpace(rec.Seller),
				Customer:    strings.TrimSpace(rec.Customer),
				Description: CanonicalProduct(strings.TrimSpace(p.Description)),
				Quantity:    strings.TrimSpace(p.Quantity),
				UnitPrice:   ParseOrZero(p.UnitPrice),
			}
			if valid(row) {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func valid(r Row) bool {
	if r.Description == "" {
		return false
	}
	return r.Quantity != "" || r.UnitPrice.IsPositive()
}

// Report lists the reasons an output is not usable. Problems are warnings, never errors.
type Report struct {
	Problems []string
}

func (r Report) OK() bool { return len(r.Problems) == 0 }

// Check reports an empty output, or one where no row carries a header field.
func Check(rows []Row) Report {
	if len(rows) == 0 {
		return Report{Problems: []string{"Nenhum dado encontrado no PDF"}}
	}
	for _, r := range rows {
		if r.ReceiptID != "" || r.Seller != "" || r.Customer != "" {
			return Report{}
		}
	}
	return Report{Problems: []string{"Nenhum dado válido encontrado nos campos obrigatórios"}}
}
