package receipt

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/recibos-extractor/internal/document"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

// shortTableDescription is the length under which a row borrows text from the rows above it.
const (
	shortTableDescription = 10
	tableLookbackRows     = 3
)

type tableColumns struct {
	desc, qty, price int
}

// TableCandidate is the product list read from one page table.
type TableCandidate struct {
	Products []entity.ProductLine
	// Clean is false when any raw description shows doubled glyphs.
	Clean bool
}

func cellText(row []*string, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(*row[i])
}

// findHeader locates the column header row of a product table.
func findHeader(t document.Table) (int, tableColumns, bool) {
	for r, row := range t {
		cols := tableColumns{desc: -1, qty: -1, price: -1}
		for c := range row {
			f := fold(cellText(row, c))
			switch {
			case f == "":
			case cols.desc < 0 && (strings.Contains(f, "DESCRI") || strings.Contains(f, "PRODUTO")):
				cols.desc = c
			case cols.qty < 0 && (strings.Contains(f, "QTD") || strings.Contains(f, "QUANT")):
				cols.qty = c
			case cols.price < 0 && strings.Contains(f, "UNITARIO"):
				cols.price = c
			}
		}
		if cols.desc >= 0 && (cols.qty >= 0 || cols.price >= 0) {
			return r, cols, true
		}
	}
	return 0, tableColumns{}, false
}

func rowIsTotal(row []*string) bool {
	for c := range row {
		if containsAny(fold(cellText(row, c)), totalKeywords...) {
			return true
		}
	}
	return false
}

// rowEndsProducts reports a row carrying a payment, totals or goods-total marker.
func rowEndsProducts(row []*string) bool {
	cells := make([]string, 0, len(row))
	for c := range row {
		if v := cellText(row, c); v != "" {
			cells = append(cells, v)
		}
	}
	_, ok := classify(fold(strings.Join(cells, " ")))
	return ok
}

// ParseTable reads the products of a page table. Reading stops at the first
// terminator row after the header, or at a total row once products were read.
// ok is false when the table has no product header.
func ParseTable(t document.Table) (TableCandidate, bool) {
	head, cols, ok := findHeader(t)
	if !ok {
		return TableCandidate{}, false
	}
	cand := TableCandidate{Clean: true}
	for r := head + 1; r < len(t); r++ {
		row := t[r]
		if rowEndsProducts(row) {
			break
		}
		if rowIsTotal(row) {
			if len(cand.Products) > 0 {
				break
			}
			continue
		}
		qty, price := cellText(row, cols.qty), cellText(row, cols.price)
		if !hasDigit(qty) && !hasDigit(price) {
			continue
		}
		desc := cellText(row, cols.desc)
		if len(desc) < shortTableDescription {
			var lead []string
			for k := r - 1; k > head && k >= r-tableLookbackRows; k-- {
				prev := t[k]
				if rowIsTotal(prev) || hasDigit(cellText(prev, cols.qty)) || hasDigit(cellText(prev, cols.price)) {
					break
				}
				if d := cellText(prev, cols.desc); d != "" {
					lead = append([]string{d}, lead...)
				}
			}
			if len(lead) > 0 {
				desc = strings.Join(append(lead, desc), " ")
			}
		}
		desc = collapseSpaces(desc)
		if looksCorrupted(desc) {
			cand.Clean = false
		}
		if cleaned := CleanDescription(desc); cleaned != "" {
			desc = cleaned
		} else {
			desc = placeholderDescription(len(cand.Products) + 1)
		}
		cand.Products = append(cand.Products, entity.ProductLine{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return cand, true
}

// looksCorrupted reports two doubled letters in a row ("TTII"), the signature of
// the glyph-doubling decoder artifact. A lone double ("100", "ANNA") is fine.
func looksCorrupted(s string) bool {
	r := []rune(s)
	for i := 0; i+3 < len(r); i++ {
		if r[i] == r[i+1] && r[i+2] == r[i+3] && r[i] != r[i+2] &&
			unicode.IsLetter(r[i]) && unicode.IsLetter(r[i+2]) {
			return true
		}
	}
	return false
}

func countPriced(products []entity.ProductLine) int {
	n := 0
	for _, p := range products {
		if hasDigit(p.UnitPrice) {
			n++
		}
	}
	return n
}

// ChooseProducts decides between the text-derived list and a table candidate.
// The text list wins unless it is empty, or the clean table has more priced
// entries, or the text has no priced entries while the clean table has some.
func ChooseProducts(text []entity.ProductLine, table TableCandidate) ([]entity.ProductLine, bool) {
	if len(table.Products) == 0 {
		return text, false
	}
	if len(text) == 0 {
		return table.Products, true
	}
	textPriced, tablePriced := countPriced(text), countPriced(table.Products)
	if table.Clean && tablePriced > textPriced {
		return table.Products, true
	}
	if table.Clean && textPriced == 0 && tablePriced > 0 {
		return table.Products, true
	}
	return text, false
}

// CrossCheck scans tables in order; the first one yielding products decides.
func CrossCheck(text []entity.ProductLine, tables []document.Table) ([]entity.ProductLine, bool) {
	for _, t := range tables {
		cand, ok := ParseTable(t)
		if !ok || len(cand.Products) == 0 {
			continue
		}
		return ChooseProducts(text, cand)
	}
	return text, false
}
