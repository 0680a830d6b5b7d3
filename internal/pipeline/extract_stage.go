package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/recibos-extractor/constants"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/document"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/extract"
	"github.com/joseph-ayodele/recibos-extractor/internal/receipt"
	"github.com/joseph-ayodele/recibos-extractor/internal/repository"
)

// ExtractResult is what the extract stage produced for one source file.
type ExtractResult struct {
	RunID   uuid.UUID
	Source  string
	Pages   int
	Records []entity.ReceiptRecord
}

// ExtractStage opens a source, runs the engine and records the run.
// Runs and Receipts may be nil, which disables persistence.
type ExtractStage struct {
	Opener   document.Opener
	Engine   *receipt.Engine
	Runs     repository.ExtractRunRepository
	Receipts repository.ReceiptRepository
	Logger   *slog.Logger
}

func NewExtractStage(opener document.Opener, engine *receipt.Engine, runs repository.ExtractRunRepository, receipts repository.ReceiptRepository, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Opener: opener, Engine: engine, Runs: runs, Receipts: receipts, Logger: logger}
}

// Run starts an extract_run, extracts every receipt of path and stores them.
// A failed run is marked FAILED before the error is returned.
func (s *ExtractStage) Run(ctx context.Context, path string, progress extract.Progress) (ExtractResult, error) {
	res := ExtractResult{Source: path}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return res, common.ExtractionFailure(fmt.Sprintf("unsupported format: %s", filepath.Ext(path)), common.ErrInvalidInput)
	}

	res.RunID = uuid.New()
	if s.Runs != nil {
		run, err := s.Runs.Start(ctx, path, format)
		if err != nil {
			return res, err
		}
		res.RunID = run.ID
	}
	logger := common.LoggerFromContext(ctx, s.Logger.With("source", path)).With("run_id", res.RunID)

	doc, err := s.Opener.Open(ctx, path)
	if err != nil {
		s.fail(ctx, logger, res.RunID, err)
		return res, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("extract.close.failed", "error", cerr)
		}
	}()

	out, err := s.Engine.Extract(doc, progress)
	if err != nil {
		s.fail(ctx, logger, res.RunID, err)
		return res, err
	}
	res.Pages = out.Pages
	res.Records = out.Records

	if s.Receipts != nil {
		if err := s.Receipts.SaveAll(ctx, res.RunID, res.Records); err != nil {
			s.fail(ctx, logger, res.RunID, err)
			return res, err
		}
	}
	if s.Runs != nil {
		if err := s.Runs.FinishSuccess(ctx, res.RunID, res.Pages, len(res.Records)); err != nil {
			return res, err
		}
	}
	logger.Info("extract.stage.ok", "pages", res.Pages, "receipts", len(res.Records), "detector", out.Detector.String())
	return res, nil
}

func (s *ExtractStage) fail(ctx context.Context, logger *slog.Logger, runID uuid.UUID, cause error) {
	logger.Error("extract.stage.failed", "error", cause)
	if s.Runs == nil {
		return
	}
	if err := s.Runs.FinishFailure(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		logger.Warn("extract.stage.mark_failed", "error", err)
	}
}
