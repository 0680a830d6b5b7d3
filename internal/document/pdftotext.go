package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

const pdftotextTimeout = 2 * time.Minute

// PdftotextDecoder shells out to poppler's pdftotext. It yields page text only;
// PageTables is always empty for documents it opens.
type PdftotextDecoder struct {
	Binary string
	runner Runner
	logger *slog.Logger
}

func NewPdftotextDecoder(binary string, logger *slog.Logger) *PdftotextDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	if binary == "" {
		binary = "pdftotext"
	}
	return &PdftotextDecoder{Binary: binary, runner: execRunner{timeout: pdftotextTimeout, logger: logger}, logger: logger}
}

// WithRunner replaces the command runner (tests).
func (p *PdftotextDecoder) WithRunner(r Runner) *PdftotextDecoder {
	p.runner = r
	return p
}

func (p *PdftotextDecoder) Decode(ctx context.Context, path string) (*Memory, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, common.NotFound(path, err)
		}
		return nil, common.ExtractionFailure("stat pdf", err)
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.Binary, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, common.ExtractionFailure(fmt.Sprintf("pdftotext %s", path),
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb))))
	}
	// A form-feed \f is used as page separator by default
	doc := FromText(string(out))
	p.logger.Debug("pdftotext.ok", "path", path, "pages", doc.PageCount(), "bytes", len(out))
	return doc, nil
}
