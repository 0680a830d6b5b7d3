package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	mgRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*MG\b`)
	split3MGRe = regexp.MustCompile(`(?i)(\d)\s+(\d)\s+(\d)\s*MG\b`)
	split2MGRe = regexp.MustCompile(`(?i)(\d)\s+(\d)\s*MG\b`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// CanonicalProduct reduces a description to name and strength:
// "TIRZEPATIDE 60 MG/2.4ML - SOL INJ" becomes "TIRZEPATIDE 60 MG".
func CanonicalProduct(desc string) string {
	if desc == "" {
		return desc
	}
	if i := strings.IndexByte(desc, '/'); i >= 0 {
		desc = strings.TrimSpace(desc[:i])
	}
	if all := mgRe.FindAllStringIndex(desc, -1); len(all) > 0 {
		desc = strings.TrimSpace(desc[:all[len(all)-1][1]])
		// digits the decoder split apart: "1 0 0 MG" -> "100 MG"
		desc = split3MGRe.ReplaceAllString(desc, "${1}${2}${3} MG")
		desc = split2MGRe.ReplaceAllString(desc, "${1}${2} MG")
	}
	return strings.TrimSpace(spacesRe.ReplaceAllString(desc, " "))
}

// ExtractMG returns the strength from the last "<n> MG" of desc, or 1 when there is none.
func ExtractMG(desc string) decimal.Decimal {
	all := mgRe.FindAllStringSubmatch(desc, -1)
	if len(all) == 0 {
		return decimal.NewFromInt(1)
	}
	mg, err := decimal.NewFromString(all[len(all)-1][1])
	if err != nil || mg.IsZero() {
		return decimal.NewFromInt(1)
	}
	return mg
}
