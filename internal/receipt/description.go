package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	punctOnlyRe   = regexp.MustCompile(`^[\d.,\s]+$`)
	numericCodeRe = regexp.MustCompile(`^\d{10,15}$`)
	shortAlnumRe  = regexp.MustCompile(`^[A-Z0-9]{8,15}$`)
	longAlnumRe   = regexp.MustCompile(`^[A-Z0-9]{8,20}$`)
	receiptNoRe   = regexp.MustCompile(`^\d{4}$`)
	lotRe         = regexp.MustCompile(`^L-\s*[A-Z0-9]`)
)

func placeholderDescription(n int) string {
	return "Produto " + strconv.Itoa(n)
}

func stripCode(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// isCode reports a bare numeric code, or a single alphanumeric token with digits
// ("C086AB250901"). Multi-word text is never a code, so "SEMAGLUTIDA 5 MG" survives.
func isCode(s string, alnum *regexp.Regexp) bool {
	c := stripCode(s)
	if numericCodeRe.MatchString(c) {
		return true
	}
	return alnum.MatchString(c) && hasDigit(c) && !strings.ContainsAny(strings.TrimSpace(s), " \t")
}

// fragmentBefore returns the description text left of the unit code, or "" when
// it is a bare number or code.
func fragmentBefore(m unitMatch) string {
	before := strings.TrimSpace(m.text[:m.at])
	if len(before) <= 5 || punctOnlyRe.MatchString(before) {
		return ""
	}
	if isCode(before, shortAlnumRe) {
		return ""
	}
	return before
}

// skipAsDescription filters lines that can never be part of a description:
// codes, column headers, data rows and lot/expiry/regulatory lines.
func skipAsDescription(line string) bool {
	if line == "" || receiptNoRe.MatchString(line) {
		return true
	}
	f := fold(line)
	if containsAny(f, columnHeaderKeywords...) {
		return true
	}
	if strictLineRe.MatchString(line) {
		return true
	}
	if isCode(line, longAlnumRe) {
		return true
	}
	if containsAny(f, codeKeywords...) {
		return true
	}
	return lotRe.MatchString(line)
}

// describe reconstructs the description of the product on line i. A preceding
// line that starts with a product name is the whole description; otherwise
// dosage lines are joined farthest first, followed by the fragment on the data
// row itself. Lines used are marked so no other product can take them.
func (p *LineParser) describe(lines []string, state []lineState, i int, m unitMatch) string {
	var parts []string
	if frag := fragmentBefore(m); frag != "" {
		parts = append(parts, frag)
	}

	var dosage []int
	named := -1
	for j := i - 1; j >= 0 && j >= i-p.opts.LookbackLines; j-- {
		if state[j] != stateUnvisited {
			continue
		}
		prev := lines[j]
		if skipAsDescription(prev) {
			continue
		}
		f := fold(prev)
		if p.startsWithProductName(f) {
			named = j
			break
		}
		if len(prev) > 10 && containsAny(f, dosageKeywords...) {
			dosage = append(dosage, j)
		}
	}

	switch {
	case named >= 0:
		state[named] = stateDescription
		parts = []string{lines[named]}
	case len(dosage) > 0:
		lead := make([]string, 0, len(dosage))
		for k := len(dosage) - 1; k >= 0; k-- {
			state[dosage[k]] = stateDescription
			lead = append(lead, lines[dosage[k]])
		}
		parts = append(lead, parts...)
	}
	return CleanDescription(strings.Join(parts, " "))
}
