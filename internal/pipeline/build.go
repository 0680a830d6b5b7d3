package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/document"
	"github.com/joseph-ayodele/recibos-extractor/internal/export"
	"github.com/joseph-ayodele/recibos-extractor/internal/receipt"
	"github.com/joseph-ayodele/recibos-extractor/internal/repository"
)

// New wires a Processor from configuration. db may be nil, which disables persistence.
func New(cfg *common.Config, db *repository.DB, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	opener := document.NewFileOpener(document.Config{
		Decoder:     cfg.PDF.Decoder,
		Pdftotext:   cfg.PDF.Pdftotext,
		MaxFileSize: cfg.PDF.MaxFileSize,
	}, logger)
	engine := receipt.NewEngine(receipt.OptionsFromConfig(cfg.Extract), logger)

	var (
		runs     repository.ExtractRunRepository
		receipts repository.ReceiptRepository
	)
	if db != nil {
		runs = repository.NewExtractRunRepository(db, logger)
		receipts = repository.NewReceiptRepository(db, logger)
	}
	return NewProcessor(logger,
		NewExtractStage(opener, engine, runs, receipts, logger),
		NewExportStage(export.NewService(logger), logger),
		ExportOptions{Dir: cfg.Export.Dir, Stats: cfg.Export.Stats, JSON: cfg.Export.JSON},
	)
}
