// Package receipt turns the joined text of a receipt document into structured
// records: segmentation, header fields, product section, product lines and the
// optional page-table cross-check.
package receipt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/internal/document"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/extract"
)

// Result is the outcome of one extraction call.
type Result struct {
	Records  []entity.ReceiptRecord
	Pages    int
	Detector DetectorKind
}

// Engine runs the extraction of one document per call. It keeps no state between
// calls, so one Engine may serve several goroutines.
type Engine struct {
	opts      Options
	logger    *slog.Logger
	segmenter *Segmenter
	locator   *Locator
	parser    *LineParser
}

func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	return &Engine{
		opts:      opts,
		logger:    logger,
		segmenter: NewSegmenter(opts, logger),
		locator:   NewLocator(opts, logger),
		parser:    NewLineParser(opts, logger),
	}
}

// Extract acquires the document text and extracts every receipt in it. Only
// acquisition errors are returned; everything else degrades the output.
func (e *Engine) Extract(doc document.Document, progress extract.Progress) (Result, error) {
	progress.Report(0, 0, "Extraindo texto do PDF...")
	acq, err := extract.Acquire(doc, progress)
	if err != nil {
		return Result{}, err
	}
	progress.Report(0, 0, "Processando recibos...")
	return e.extract(acq, doc, progress), nil
}

// ExtractText runs the engine on already-extracted text, pages separated by form feeds.
func (e *Engine) ExtractText(text string) []entity.ReceiptRecord {
	doc := document.FromText(text)
	res, err := e.Extract(doc, nil)
	if err != nil {
		e.logger.Warn("engine.text.failed", "error", err)
		return nil
	}
	return res.Records
}

func (e *Engine) extract(acq extract.Acquired, doc document.Document, progress extract.Progress) Result {
	res := Result{Pages: acq.PageCount}
	seg := e.segmenter.Segment(acq)
	res.Detector = seg.Detector
	if len(seg.Segments) == 0 {
		e.logger.Info("engine.empty", "pages", acq.PageCount)
		return res
	}

	totalLines := len(splitLines(acq.Text))
	owners := pageOwners(acq, seg.Segments)
	n := len(seg.Segments)
	for i, s := range seg.Segments {
		progress.Report(i+1, n, fmt.Sprintf("Processando recibo %d de %d...", i+1, n))
		var tables []document.Table
		if e.opts.TableCrossCheck && doc != nil {
			tables = e.exclusiveTables(doc, acq, s, owners)
		}
		rec := e.parseSegment(s, totalLines, tables)
		if rec.ID == "" && rec.Seller == "" && len(rec.Products) == 0 {
			e.logger.Debug("engine.segment.dropped", "index", i, "start", s.Start)
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		whole := entity.ReceiptSegment{Start: 0, End: len(acq.Text), Text: acq.Text}
		rec := e.parseSegment(whole, totalLines, nil)
		if rec.HasHeader() || len(rec.Products) > 0 {
			res.Records = append(res.Records, rec)
		}
		e.logger.Debug("engine.fallback.whole_document", "records", len(res.Records))
	}
	e.logger.Info("engine.extract.ok",
		"pages", acq.PageCount, "detector", seg.Detector.String(),
		"segments", n, "records", len(res.Records))
	return res
}

// parseSegment extracts one record from a segment.
func (e *Engine) parseSegment(s entity.ReceiptSegment, totalLines int, tables []document.Table) entity.ReceiptRecord {
	h := ExtractHeader(s.Text)
	rec := entity.ReceiptRecord{ID: s.ID, Seller: h.Seller, Customer: h.Customer}
	if h.ID != "" {
		rec.ID = h.ID
	}

	lines := splitLines(s.Text)
	sec := e.locator.Locate(lines, totalLines)
	var products []entity.ProductLine
	if sec.Found {
		products = e.parser.Parse(sec.Lines(lines))
	} else {
		e.logger.Debug("engine.section.missing", "id", rec.ID)
	}

	if len(tables) > 0 {
		var replaced bool
		products, replaced = CrossCheck(products, tables)
		if replaced {
			e.logger.Info("engine.tables.replaced", "id", rec.ID, "products", len(products))
		}
	}
	rec.Products = ValidateProducts(products)
	e.logger.Debug("engine.segment.ok", "id", rec.ID, "products", len(rec.Products), "rule", sec.Rule)
	return rec
}

// ValidateProducts drops products without any number and repeats of the same
// (description, quantity, unit price).
func ValidateProducts(products []entity.ProductLine) []entity.ProductLine {
	out := make([]entity.ProductLine, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		p.Description = strings.TrimSpace(p.Description)
		p.Quantity = strings.TrimSpace(p.Quantity)
		p.UnitPrice = strings.TrimSpace(p.UnitPrice)
		if !hasDigit(p.Quantity) && !hasDigit(p.UnitPrice) {
			continue
		}
		key := p.Description + "|" + p.Quantity + "|" + p.UnitPrice
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// pageOwners counts, per page, how many segments overlap it.
func pageOwners(acq extract.Acquired, segs []entity.ReceiptSegment) map[int]int {
	owners := make(map[int]int)
	for _, s := range segs {
		for _, p := range acq.PagesOverlapping(s.Start, s.End) {
			owners[p]++
		}
	}
	return owners
}

// exclusiveTables returns the tables of pages no other segment shares, so a
// table can never carry another receipt's products into this one.
func (e *Engine) exclusiveTables(doc document.Document, acq extract.Acquired, s entity.ReceiptSegment, owners map[int]int) []document.Table {
	if len(acq.PageStarts) == 0 {
		return nil
	}
	var out []document.Table
	for _, p := range acq.PagesOverlapping(s.Start, s.End) {
		if owners[p] != 1 {
			continue
		}
		tables, err := doc.PageTables(p)
		if err != nil {
			e.logger.Debug("engine.tables.unavailable", "page", p+1, "error", err)
			continue
		}
		out = append(out, tables...)
	}
	return out
}
