package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/recibos-extractor/constants"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

// Config selects the decoder used for PDF sources.
type Config struct {
	Decoder     string // constants.DecoderLedongthuc | constants.DecoderPdftotext
	Pdftotext   string
	MaxFileSize int64 // 0 = no limit
}

// FileOpener picks a strategy based on file extension.
type FileOpener struct {
	cfg       Config
	pdftotext *PdftotextDecoder
	logger    *slog.Logger
}

func NewFileOpener(cfg Config, logger *slog.Logger) *FileOpener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Decoder == "" {
		cfg.Decoder = constants.DecoderLedongthuc
	}
	return &FileOpener{cfg: cfg, pdftotext: NewPdftotextDecoder(cfg.Pdftotext, logger), logger: logger}
}

// WithRunner replaces the runner used by the pdftotext decoder (tests).
func (o *FileOpener) WithRunner(r Runner) *FileOpener {
	o.pdftotext.WithRunner(r)
	return o
}

func (o *FileOpener) Open(ctx context.Context, path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NotFound(path, err)
		}
		return nil, common.ExtractionFailure("stat source", err)
	}
	if info.IsDir() {
		return nil, common.ExtractionFailure(fmt.Sprintf("path is a directory, not a file: %s", path), common.ErrInvalidInput)
	}
	if o.cfg.MaxFileSize > 0 && info.Size() > o.cfg.MaxFileSize {
		return nil, common.ExtractionFailure(
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), o.cfg.MaxFileSize), common.ErrInvalidInput)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	o.logger.Debug("document.open", "path", path, "ext", ext, "decoder", o.cfg.Decoder)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		if o.cfg.Decoder == constants.DecoderPdftotext {
			return o.pdftotext.Decode(ctx, path)
		}
		return OpenPDF(path, o.logger)
	case constants.TXT:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, common.ExtractionFailure("read text source", err)
		}
		return FromText(string(b)), nil
	default:
		o.logger.Error("unsupported document extension", "extension", ext)
		return nil, common.ExtractionFailure(fmt.Sprintf("unsupported extension: %q", ext), common.ErrInvalidInput)
	}
}
