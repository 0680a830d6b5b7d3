// Package stats aggregates exported rows per seller and product.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/recibos-extractor/internal/normalize"
)

// SellerProduct is the aggregate of one product sold by one seller.
type SellerProduct struct {
	Seller        string          `json:"vendedor"`
	Product       string          `json:"produto"`
	QuantityTotal decimal.Decimal `json:"quantidade_total"`
	ValueTotal    decimal.Decimal `json:"valor_total"`
	AvgPerMG      decimal.Decimal `json:"preco_medio_mg"`
	MinPerMG      decimal.Decimal `json:"preco_minimo_mg"`
	MaxPerMG      decimal.Decimal `json:"preco_maximo_mg"`
}

type key struct{ seller, product string }

type acc struct {
	SellerProduct
	mg   decimal.Decimal
	seen bool
}

// BySeller groups rows by (seller, product). The value total is quantity times
// unit price; the average price per mg is value total / (quantity total * mg),
// and min/max are taken over the unit price per mg of each row. Results are
// ordered by seller, then product.
func BySeller(rows []normalize.Row) []SellerProduct {
	groups := make(map[key]*acc)
	for _, r := range rows {
		k := key{seller: r.Seller, product: r.Description}
		g, ok := groups[k]
		if !ok {
			g = &acc{
				SellerProduct: SellerProduct{Seller: r.Seller, Product: r.Description},
				mg:            normalize.ExtractMG(r.Description),
			}
			groups[k] = g
		}
		qty := normalize.ParseOrZero(r.Quantity)
		g.QuantityTotal = g.QuantityTotal.Add(qty)
		g.ValueTotal = g.ValueTotal.Add(qty.Mul(r.UnitPrice))

		perMG := r.UnitPrice.Div(g.mg)
		if !g.seen || perMG.LessThan(g.MinPerMG) {
			g.MinPerMG = perMG
		}
		if !g.seen || perMG.GreaterThan(g.MaxPerMG) {
			g.MaxPerMG = perMG
		}
		g.seen = true
	}

	out := make([]SellerProduct, 0, len(groups))
	for _, g := range groups {
		if den := g.QuantityTotal.Mul(g.mg); !den.IsZero() {
			g.AvgPerMG = g.ValueTotal.Div(den)
		}
		out = append(out, g.SellerProduct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seller != out[j].Seller {
			return out[i].Seller < out[j].Seller
		}
		return out[i].Product < out[j].Product
	})
	return out
}
