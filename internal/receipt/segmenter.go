package receipt

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/extract"
)

// DetectorKind names the boundary detector that segmented a document.
type DetectorKind int

const (
	DetectNone DetectorKind = iota
	DetectTitleDateTime
	DetectIDLabel
	DetectPageMarker
	DetectPhysicalPages
	DetectWholeDocument
)

func (k DetectorKind) String() string {
	switch k {
	case DetectTitleDateTime:
		return "title_datetime"
	case DetectIDLabel:
		return "id_label"
	case DetectPageMarker:
		return "page_marker"
	case DetectPhysicalPages:
		return "physical_pages"
	case DetectWholeDocument:
		return "whole_document"
	}
	return "none"
}

// boundary is the start of one receipt as found by a detector.
type boundary struct {
	start, end int
	id         string
}

// detector finds receipt boundaries over the whole text. It wins only when it
// yields at least minMatches boundaries.
type detector struct {
	kind       DetectorKind
	minMatches int
	find       func(text string, opts Options) []boundary
}

// detectors in priority order; the first that matches segments the whole document.
var detectors = []detector{
	{kind: DetectTitleDateTime, minMatches: 1, find: findTitleDateTime},
	{kind: DetectIDLabel, minMatches: 1, find: findIDLabels},
	{kind: DetectPageMarker, minMatches: 2, find: findPageMarkers},
}

func findTitleDateTime(text string, _ Options) []boundary {
	return boundariesFrom(titleDateTimeRe.FindAllStringIndex(text, -1))
}

func findPageMarkers(text string, _ Options) []boundary {
	return boundariesFrom(firstPageRe.FindAllStringIndex(text, -1))
}

func boundariesFrom(locs [][]int) []boundary {
	out := make([]boundary, 0, len(locs))
	for _, loc := range locs {
		out = append(out, boundary{start: loc[0], end: loc[1]})
	}
	return out
}

// findIDLabels merges the matches of every label variant, drops duplicates and
// matches nested inside another one, and orders them by offset.
func findIDLabels(text string, _ Options) []boundary {
	var all []boundary
	for _, re := range idLabelPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			all = append(all, boundary{start: m[0], end: m[1], id: text[m[2]:m[3]]})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end > all[j].end
	})
	out := make([]boundary, 0, len(all))
	for _, b := range all {
		if n := len(out); n > 0 && b.start < out[n-1].end {
			continue
		}
		out = append(out, b)
	}
	return out
}

// firstID returns the first receipt id label inside text.
func firstID(text string) string {
	best, bestAt := "", -1
	for _, re := range idLabelPatterns {
		if m := re.FindStringSubmatchIndex(text); m != nil && (bestAt < 0 || m[0] < bestAt) {
			best, bestAt = text[m[2]:m[3]], m[0]
		}
	}
	return best
}

// Segmentation is the ordered list of receipt segments of one document.
type Segmentation struct {
	Segments []entity.ReceiptSegment
	Detector DetectorKind
}

// Segmenter splits a joined document text into receipt segments.
type Segmenter struct {
	opts   Options
	logger *slog.Logger
}

func NewSegmenter(opts Options, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{opts: opts.withDefaults(), logger: logger}
}

// Segment applies the detector cascade, then falls back to physical pages and
// finally to the whole document as one receipt.
func (s *Segmenter) Segment(acq extract.Acquired) Segmentation {
	text := acq.Text
	if strings.TrimSpace(text) == "" {
		return Segmentation{Detector: DetectNone}
	}
	for _, d := range detectors {
		bs := d.find(text, s.opts)
		if len(bs) < d.minMatches || len(bs) == 0 {
			continue
		}
		segs := s.fromBoundaries(text, bs)
		s.logger.Debug("segment.detector.matched", "detector", d.kind.String(), "segments", len(segs))
		return Segmentation{Segments: segs, Detector: d.kind}
	}

	if acq.PageCount > 1 && len(acq.PageStarts) == acq.PageCount {
		var segs []entity.ReceiptSegment
		for i := 0; i < acq.PageCount; i++ {
			start, end := acq.PageSpan(i)
			if strings.TrimSpace(text[start:end]) == "" {
				continue
			}
			segs = append(segs, entity.ReceiptSegment{
				Start: start, End: end, Text: text[start:end],
				ID: fmt.Sprintf("PAGINA_%d", i+1), Synthetic: true,
			})
		}
		if len(segs) > 0 {
			s.logger.Debug("segment.fallback.pages", "segments", len(segs))
			return Segmentation{Segments: segs, Detector: DetectPhysicalPages}
		}
	}

	s.logger.Debug("segment.fallback.whole_document")
	return Segmentation{
		Segments: []entity.ReceiptSegment{{Start: 0, End: len(text), Text: text}},
		Detector: DetectWholeDocument,
	}
}

func (s *Segmenter) fromBoundaries(text string, bs []boundary) []entity.ReceiptSegment {
	segs := make([]entity.ReceiptSegment, 0, len(bs))
	for i, b := range bs {
		start := b.start
		if i == 0 {
			// leading header text belongs to the first receipt
			start = 0
		}
		end := len(text)
		if i+1 < len(bs) {
			end = bs[i+1].start
		}

		id := b.id
		if id == "" {
			windowEnd := min(b.start+s.opts.IDLookahead, end)
			id = firstID(text[b.start:windowEnd])
		}
		seg := entity.ReceiptSegment{Start: start, End: end, ID: id}
		if seg.ID == "" {
			seg.ID = fmt.Sprintf("RECIBO_%d", i+1)
			seg.Synthetic = true
		}
		segs = append(segs, seg)
	}

	for i := range segs {
		if i+1 < len(segs) && !segs[i+1].Synthetic {
			segs[i].End = trimNextReference(text, segs[i].Start, segs[i].End, segs[i+1].ID)
		}
		segs[i].Text = text[segs[i].Start:segs[i].End]
	}
	return segs
}

// trimNextReference shortens [start, end) when the next receipt's id label shows
// up inside it after a terminal marker, so the next id cannot leak into this one.
func trimNextReference(text string, start, end int, nextID string) int {
	re, err := regexp.Compile(`\n[ \t]*N[º°]\s*:?\s*` + regexp.QuoteMeta(nextID) + `\b`)
	if err != nil {
		return end
	}
	body := text[start:end]
	loc := re.FindStringIndex(body)
	if loc == nil || loc[0] <= 0 {
		return end
	}
	if containsAny(fold(body[:loc[0]]), terminalKeywords...) {
		return start + loc[0]
	}
	return end
}
