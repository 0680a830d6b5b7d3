package receipt

import "log/slog"

// TerminatorKind classifies a line that may close the product table.
type TerminatorKind int

const (
	TermGoods TerminatorKind = iota + 1
	TermTotals
	TermPayment
)

func (k TerminatorKind) String() string {
	switch k {
	case TermGoods:
		return "goods"
	case TermTotals:
		return "totals"
	case TermPayment:
		return "payment"
	}
	return "unknown"
}

// reliable terminators close the table for sure; a goods subtotal may be intermediate.
func (k TerminatorKind) reliable() bool {
	return k == TermPayment || k == TermTotals
}

type terminator struct {
	line     int
	kind     TerminatorKind
	distance int
}

// Section is the product table region of a segment: lines Open+1 up to End (exclusive).
type Section struct {
	Found bool
	Open  int
	End   int
	// Rule names the cascade step that chose End.
	Rule    string
	Suspect bool
}

// Lines returns the product-table lines of the section.
func (s Section) Lines(lines []string) []string {
	if !s.Found || s.Open+1 >= s.End {
		return nil
	}
	return lines[s.Open+1 : s.End]
}

// Locator finds the product table within a segment.
type Locator struct {
	opts   Options
	logger *slog.Logger
}

func NewLocator(opts Options, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{opts: opts.withDefaults(), logger: logger}
}

// MinSectionLength is max(MinSectionLines, totalLines / SectionLinesDivisor).
func (l *Locator) MinSectionLength(totalDocLines int) int {
	return max(l.opts.MinSectionLines, totalDocLines/l.opts.SectionLinesDivisor)
}

func classify(line string) (TerminatorKind, bool) {
	switch {
	case paymentRe.MatchString(line):
		return TermPayment, true
	case totalsRe.MatchString(line):
		return TermTotals, true
	case goodsTotalRe.MatchString(line):
		return TermGoods, true
	}
	return 0, false
}

// Locate scans lines for the section opener and picks its end with the terminator
// cascade. totalDocLines is the line count of the whole document.
func (l *Locator) Locate(lines []string, totalDocLines int) Section {
	open := -1
	for i, line := range lines {
		if sectionOpenRe.MatchString(line) {
			open = i
			break
		}
	}
	if open < 0 {
		return Section{}
	}

	var terms []terminator
	for i := open + 1; i < len(lines); i++ {
		if kind, ok := classify(lines[i]); ok {
			terms = append(terms, terminator{line: i, kind: kind, distance: i - open})
		}
	}

	sec := Section{Found: true, Open: open}
	if len(terms) == 0 {
		sec.End, sec.Rule = len(lines), "end_of_segment"
		return sec
	}

	minLen := l.MinSectionLength(totalDocLines)
	nearest, last := terms[0], terms[len(terms)-1]

	switch {
	case nearest.distance >= minLen:
		sec.End, sec.Rule = nearest.line, "nearest"
	case l.reliableBeyond(terms, minLen) >= 0:
		sec.End, sec.Rule = l.reliableBeyond(terms, minLen), "reliable"
	case last.kind != TermPayment && l.forwardSearch(lines, open, last.line, minLen) >= 0:
		sec.End, sec.Rule = l.forwardSearch(lines, open, last.line, minLen), "forward_search"
	case float64(last.distance) >= l.opts.FallbackRatio*float64(minLen):
		sec.End, sec.Rule = last.line, "furthest"
	default:
		sec.End, sec.Rule, sec.Suspect = last.line, "last_suspect", true
		l.logger.Warn("section.terminator.suspect",
			"line", last.line, "kind", last.kind.String(), "distance", last.distance, "min_length", minLen)
	}
	l.logger.Debug("section.located", "open", open, "end", sec.End, "rule", sec.Rule, "terminators", len(terms))
	return sec
}

// reliableBeyond returns the nearest payment/totals terminator at least minLen away, or -1.
func (l *Locator) reliableBeyond(terms []terminator, minLen int) int {
	for _, t := range terms {
		if t.kind.reliable() && t.distance >= minLen {
			return t.line
		}
	}
	return -1
}

// forwardSearch looks past the last known terminator for a looser payment marker,
// or a totals marker far enough from the opener. Returns -1 when none is found.
func (l *Locator) forwardSearch(lines []string, open, from, minLen int) int {
	limit := min(len(lines), from+1+l.opts.ForwardSearchLines)
	for i := from + 1; i < limit; i++ {
		line := lines[i]
		if laxPaymentRe.MatchString(line) {
			return i
		}
		if (laxTotalsRe.MatchString(line) || totalsRe.MatchString(line)) && i-open >= minLen {
			return i
		}
	}
	return -1
}
