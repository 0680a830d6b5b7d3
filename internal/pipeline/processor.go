// Package pipeline wires a source file through extraction, persistence and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/extract"
)

// Outcome is the result of processing one file or one batch.
type Outcome struct {
	Runs   []ExtractResult
	Export ExportResult
}

// Records returns the records of every run in order.
func (o Outcome) Records() []entity.ReceiptRecord {
	var out []entity.ReceiptRecord
	for _, r := range o.Runs {
		out = append(out, r.Records...)
	}
	return out
}

// Processor coordinates the extract stage then the export stage.
type Processor struct {
	Logger  *slog.Logger
	Extract *ExtractStage
	Export  *ExportStage
	Output  ExportOptions
}

func NewProcessor(logger *slog.Logger, ext *ExtractStage, exp *ExportStage, output ExportOptions) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extract: ext, Export: exp, Output: output}
}

// ProcessFile extracts one file and writes its workbook. Without an explicit
// output name the workbook is named after the source.
func (p *Processor) ProcessFile(ctx context.Context, path string, progress extract.Progress) (Outcome, error) {
	ctx = common.WithLogger(ctx, p.Logger.With("source", path))
	res, err := p.Extract.Run(ctx, path, progress)
	if err != nil {
		p.Logger.Error("processor.extract.failed", "source", path, "error", err)
		return Outcome{}, err
	}
	out := Outcome{Runs: []ExtractResult{res}}

	opts := p.Output
	if opts.Name == "" {
		opts.Name = WorkbookName(path)
	}
	out.Export, err = p.Export.Run(res.Records, opts)
	if err != nil {
		p.Logger.Error("processor.export.failed", "source", path, "run_id", res.RunID, "error", err)
		return out, err
	}
	p.Logger.Info("processor.file.ok", "source", path, "run_id", res.RunID, "workbook", out.Export.Workbook)
	return out, nil
}

// ProcessBatch extracts every path and writes one combined workbook. A failing
// file does not stop the batch; its error is joined into the returned error.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, progress extract.Progress) (Outcome, error) {
	var (
		out  Outcome
		errs []error
	)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		progress.Report(i+1, len(paths), fmt.Sprintf("Arquivo %d de %d: %s", i+1, len(paths), filepath.Base(path)))
		res, err := p.Extract.Run(ctx, path, nil)
		if err != nil {
			p.Logger.Warn("processor.batch.skip", "source", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		out.Runs = append(out.Runs, res)
	}
	if len(out.Runs) == 0 {
		return out, errors.Join(errs...)
	}

	exp, err := p.Export.Run(out.Records(), p.Output)
	out.Export = exp
	if err != nil {
		errs = append(errs, err)
	}
	p.Logger.Info("processor.batch.done", "files", len(paths), "ok", len(out.Runs), "workbook", exp.Workbook)
	return out, errors.Join(errs...)
}

// WorkbookName derives the per-source workbook name, e.g. lote.pdf -> recibos_lote.xlsx.
func WorkbookName(path string) string {
	base := filepath.Base(path)
	return "recibos_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}
