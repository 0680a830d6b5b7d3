package receipt

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

// lineState tracks each product-table line; a line leaves stateUnvisited at most once.
type lineState uint8

const (
	stateUnvisited lineState = iota
	stateProduct
	stateDescription
	stateSkip
)

// LinePattern names the cascade step that recognised a product line.
type LinePattern int

const (
	PatternNone LinePattern = iota
	PatternStrict
	PatternLoose
	PatternGlued
	PatternRepaired
)

var (
	// unit code, quantity and unit price, each number carrying a separator
	strictLineRe = regexp.MustCompile(`(?:^|\s)([A-Z]{2,3})\s+(\d+(?:[.,]\d+)+)\s+(\d+(?:[.,]\d+)+)(?:\s|$)`)
	looseLineRe  = regexp.MustCompile(`(?:^|\s)([A-Z]{1,4})\s+(\d[\d.,]*)\s+(\d[\d.,]*)(?:\s|$)`)
	// unit code anywhere, possibly glued to the preceding word
	gluedLineRe = regexp.MustCompile(`([A-Z]{2,3})\s+(\d[\d.,]*)\s+(\d[\d.,]*)`)

	longDigitsRe = regexp.MustCompile(`\d{10,}`)
	splitDigitRe = regexp.MustCompile(`\b(\d)\s(\d{1,3}[.,]\d)`)
)

// unitMatch is one recognised data row.
type unitMatch struct {
	pattern LinePattern
	unit    string
	qty     string
	price   string
	// at is the byte offset of the unit code in the matched text
	at   int
	text string
}

func matchWith(re *regexp.Regexp, line string, p LinePattern) (unitMatch, bool) {
	m := re.FindStringSubmatchIndex(line)
	if m == nil {
		return unitMatch{}, false
	}
	return unitMatch{
		pattern: p,
		unit:    line[m[2]:m[3]],
		qty:     line[m[4]:m[5]],
		price:   line[m[6]:m[7]],
		at:      m[2],
		text:    line,
	}, true
}

// LineParser turns the lines of a product section into product lines.
type LineParser struct {
	opts   Options
	logger *slog.Logger
}

func NewLineParser(opts Options, logger *slog.Logger) *LineParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineParser{opts: opts.withDefaults(), logger: logger}
}

// matchLine runs the pattern cascade on one trimmed line. prev is the trimmed
// line above it.
func (p *LineParser) matchLine(line, prev string) (unitMatch, bool) {
	if m, ok := matchWith(strictLineRe, line, PatternStrict); ok {
		return m, true
	}
	if m, ok := matchWith(looseLineRe, line, PatternLoose); ok {
		return m, true
	}
	if m, ok := p.matchGlued(line); ok {
		return m, true
	}
	if p.looksLikeDescription(prev) {
		fixed := repairArtifacts(line)
		if fixed != line {
			if m, ok := matchWith(strictLineRe, fixed, PatternRepaired); ok {
				return m, true
			}
			if m, ok := matchWith(looseLineRe, fixed, PatternRepaired); ok {
				return m, true
			}
		}
	}
	return unitMatch{}, false
}

// matchGlued accepts a unit code with leading junk. A code glued to the end of a
// longer word is usually that word's tail ("FRASCO" -> "CO"); it is accepted only
// under LenientUnits when the preceding text carries a regulatory code or a long
// digit run.
func (p *LineParser) matchGlued(line string) (unitMatch, bool) {
	m, ok := matchWith(gluedLineRe, line, PatternGlued)
	if !ok {
		return unitMatch{}, false
	}
	if m.at == 0 || !isLetterByte(line[m.at-1]) {
		return m, true
	}
	// the leftmost match swallows the word's last letter ("LOTEUN" -> "EUN")
	if n := len(m.unit); n > 2 {
		m.at += n - 2
		m.unit = m.unit[n-2:]
	}
	before := line[:m.at]
	if p.opts.LenientUnits && (strings.Contains(fold(before), "ANVISA") || longDigitsRe.MatchString(before)) {
		p.logger.Debug("lines.unit.lenient", "unit", m.unit, "line", line)
		return m, true
	}
	return unitMatch{}, false
}

func isLetterByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// looksLikeDescription reports whether a line reads like a product name line.
func (p *LineParser) looksLikeDescription(line string) bool {
	if line == "" {
		return false
	}
	f := fold(line)
	if p.startsWithProductName(f) {
		return true
	}
	return len(line) > 10 && containsAny(f, dosageKeywords...)
}

func (p *LineParser) startsWithProductName(folded string) bool {
	for _, name := range p.opts.ProductNames {
		if strings.HasPrefix(folded, fold(name)) {
			return true
		}
	}
	return false
}

// repairArtifacts undoes doubled glyphs and digit groups split by a space.
func repairArtifacts(line string) string {
	out := removeDuplicateChars(line)
	for {
		next := splitDigitRe.ReplaceAllString(out, "$1$2")
		if next == out {
			break
		}
		out = next
	}
	return strings.ToUpper(out)
}

func isTotalLine(line string) bool {
	return containsAny(fold(line), totalKeywords...)
}

// Parse walks the section once, top to bottom. Backward description lookups are
// bounded by LookbackLines and never touch a line that is no longer unvisited.
func (p *LineParser) Parse(lines []string) []entity.ProductLine {
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimSpace(l)
	}
	state := make([]lineState, len(lines))
	seen := make(map[string]struct{})
	var products []entity.ProductLine

	for i, line := range trimmed {
		if state[i] != stateUnvisited || line == "" {
			continue
		}
		if isTotalLine(line) {
			state[i] = stateSkip
			continue
		}
		prev := ""
		if i > 0 {
			prev = trimmed[i-1]
		}
		m, ok := p.matchLine(line, prev)
		if !ok {
			continue
		}
		if !hasDigit(m.qty) && !hasDigit(m.price) {
			state[i] = stateSkip
			continue
		}
		key := m.qty + "|" + m.price + "|" + m.unit
		if _, dup := seen[key]; dup {
			state[i] = stateSkip
			p.logger.Debug("lines.product.duplicate", "key", key)
			continue
		}
		state[i] = stateProduct

		desc := p.describe(trimmed, state, i, m)
		if containsAny(fold(desc), totalKeywords...) {
			continue
		}
		if desc == "" {
			desc = placeholderDescription(len(products) + 1)
		}
		seen[key] = struct{}{}
		p.logger.Debug("lines.product.ok", "line", i, "pattern", int(m.pattern), "unit", m.unit)
		products = append(products, entity.ProductLine{
			Description: desc,
			Quantity:    m.qty,
			UnitPrice:   m.price,
			Unit:        m.unit,
		})
	}
	return products
}
