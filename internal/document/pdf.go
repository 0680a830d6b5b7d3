package document

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

// PDFDocument decodes pages lazily with ledongthuc/pdf. A relaxed pdfcpu read
// cross-checks the page count before decoding starts.
type PDFDocument struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  int
	logger *slog.Logger

	mu      sync.Mutex
	decoded map[int]decodedPage
}

type decodedPage struct {
	text   string
	tables []Table
	err    error
}

// OpenPDF opens path. A missing file is a NotFound error; anything else the
// decoder rejects is an ExtractionFailure.
func OpenPDF(path string, logger *slog.Logger) (*PDFDocument, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, common.NotFound(path, err)
		}
		return nil, common.ExtractionFailure("stat pdf", err)
	}

	pages, preErr := preflight(path)
	if preErr != nil {
		logger.Warn("pdf.preflight.failed", "path", path, "error", preErr)
	}

	f, r, err := openLedongthuc(path)
	if err != nil {
		return nil, common.ExtractionFailure(fmt.Sprintf("open pdf %s", path), err)
	}
	pages = pageCount(pages, r.NumPage(), path, logger)
	logger.Debug("pdf.open.ok", "path", path, "pages", pages)
	return &PDFDocument{
		path:    path,
		file:    f,
		reader:  r,
		pages:   pages,
		logger:  logger,
		decoded: make(map[int]decodedPage),
	}, nil
}

// openLedongthuc guards against the library panicking on malformed trailers.
func openLedongthuc(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				_ = f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("pdf decoder panic: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// pageCount settles on the decoder's count, since only its pages can be read.
// A disagreeing preflight count is logged, never used to drop pages.
func pageCount(preflight, decoder int, path string, logger *slog.Logger) int {
	if preflight > 0 && preflight != decoder {
		logger.Warn("pdf.page_count.mismatch", "path", path, "preflight", preflight, "decoder", decoder)
	}
	return decoder
}

func preflight(path string) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

func (d *PDFDocument) PageCount() int { return d.pages }

func (d *PDFDocument) PageText(i int) (string, error) {
	p, err := d.page(i)
	return p.text, err
}

func (d *PDFDocument) PageTables(i int) ([]Table, error) {
	p, err := d.page(i)
	return p.tables, err
}

func (d *PDFDocument) page(i int) (decodedPage, error) {
	if i < 0 || i >= d.pages {
		return decodedPage{}, fmt.Errorf("invalid page index %d (document has %d pages)", i, d.pages)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.decoded[i]; ok {
		return p, p.err
	}
	p := d.decode(i)
	d.decoded[i] = p
	return p, p.err
}

func (d *PDFDocument) decode(i int) (p decodedPage) {
	defer func() {
		if rec := recover(); rec != nil {
			p = decodedPage{err: common.ExtractionFailure(fmt.Sprintf("decode page %d", i+1), fmt.Errorf("%v", rec))}
		}
	}()
	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return decodedPage{}
	}
	texts := page.Content().Text
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	text, tables := layoutPage(glyphs)
	return decodedPage{text: text, tables: tables}
}

func (d *PDFDocument) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
