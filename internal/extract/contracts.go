package extract

// Progress is the optional, purely observational progress hook.
// total == 0 marks an indeterminate sub-phase; message may be empty.
type Progress func(current, total int, message string)

// Report calls p when it is set.
func (p Progress) Report(current, total int, message string) {
	if p != nil {
		p(current, total, message)
	}
}

// Acquired is the joined text stream of a document.
type Acquired struct {
	Text string
	// PageCount is the number of pages of the source document.
	PageCount int
	// PageStarts holds the offset in Text where each page begins.
	PageStarts []int
}

// PageSpan returns the [start, end) offsets of page i within Text.
func (a Acquired) PageSpan(i int) (int, int) {
	start := a.PageStarts[i]
	end := len(a.Text)
	if i+1 < len(a.PageStarts) {
		end = a.PageStarts[i+1]
	}
	return start, end
}

// PagesOverlapping returns the indices of pages that share at least one character with [start, end).
// Empty pages never overlap.
func (a Acquired) PagesOverlapping(start, end int) []int {
	var pages []int
	for i := range a.PageStarts {
		ps, pe := a.PageSpan(i)
		if ps < pe && ps < end && start < pe {
			pages = append(pages, i)
		}
	}
	return pages
}
