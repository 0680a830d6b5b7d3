// Package normalize turns extracted receipt records into typed output rows:
// pt-BR numbers, canonical product names and per-row validation.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

// ParseLocalized parses a pt-BR number: "." groups thousands, "," is the decimal mark.
// "1.080,00" is 1080 and "10.000" is 10000.
func ParseLocalized(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("parse %q: empty: %w", s, common.ErrInvalidInput)
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, err)
	}
	return d, nil
}

// ParseOrZero is ParseLocalized with failures read as zero.
func ParseOrZero(s string) decimal.Decimal {
	d, err := ParseLocalized(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders d with two decimals in pt-BR notation ("1.080,00"). Zero renders empty.
func FormatBRL(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return brl.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
