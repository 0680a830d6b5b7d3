package document

import (
	"math"
	"sort"
	"strings"
)

// glyph is one positioned text run as reported by the PDF content stream.
type glyph struct {
	X, Y, W, Size float64
	S             string
}

type textRow struct {
	y      float64
	glyphs []glyph
}

const (
	rowTolerance = 2.0
	// gaps are measured in multiples of the font size
	wordGapRatio = 0.2
	cellGapRatio = 1.5
	defaultSize  = 10.0
)

// groupRows clusters glyphs sharing a baseline and returns rows top to bottom,
// each sorted left to right.
func groupRows(glyphs []glyph) []textRow {
	var rows []textRow
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" && g.S != " " {
			continue
		}
		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-g.Y) < rowTolerance {
				rows[i].glyphs = append(rows[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, textRow{y: g.Y, glyphs: []glyph{g}})
		}
	}
	// PDF user space grows upwards
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	for i := range rows {
		gs := rows[i].glyphs
		sort.SliceStable(gs, func(a, b int) bool { return gs[a].X < gs[b].X })
	}
	return rows
}

func size(g glyph) float64 {
	if g.Size <= 0 {
		return defaultSize
	}
	return g.Size
}

// split walks the row and starts a new chunk whenever the horizontal gap exceeds ratio × font size.
// Within a chunk, gaps wider than a word gap become a single space.
func (r textRow) split(ratio float64) []string {
	var chunks []string
	var b strings.Builder
	for i, g := range r.glyphs {
		if i > 0 {
			prev := r.glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			switch {
			case gap > ratio*size(prev):
				chunks = append(chunks, strings.TrimSpace(b.String()))
				b.Reset()
			case gap > wordGapRatio*size(prev) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	chunks = append(chunks, strings.TrimSpace(b.String()))
	return chunks
}

// text renders the row as one line.
func (r textRow) text() string {
	return strings.Join(r.split(math.Inf(1)), " ")
}

// cells renders the row as table cells; empty chunks become nil cells.
func (r textRow) cells() []*string {
	chunks := r.split(cellGapRatio)
	out := make([]*string, len(chunks))
	for i, c := range chunks {
		if c != "" {
			out[i] = Cell(c)
		}
	}
	return out
}

// layoutPage turns glyphs into page text (one line per row) and a single page table
// holding every row split into cells.
func layoutPage(glyphs []glyph) (string, []Table) {
	rows := groupRows(glyphs)
	if len(rows) == 0 {
		return "", nil
	}
	lines := make([]string, 0, len(rows))
	table := make(Table, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.text())
		table = append(table, r.cells())
	}
	return strings.Join(lines, "\n"), []Table{table}
}
