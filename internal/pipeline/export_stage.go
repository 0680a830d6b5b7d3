package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
	"github.com/joseph-ayodele/recibos-extractor/internal/export"
	"github.com/joseph-ayodele/recibos-extractor/internal/normalize"
	"github.com/joseph-ayodele/recibos-extractor/internal/stats"
)

// ExportOptions selects what the export stage writes.
type ExportOptions struct {
	Dir   string
	Name  string // workbook file name; empty uses the timestamped default
	Stats bool
	JSON  bool
}

// ExportResult lists the files written and the validation report.
type ExportResult struct {
	Workbook string
	JSON     string
	Rows     int
	Report   normalize.Report
}

// ExportStage normalizes records into rows and writes the workbook.
type ExportStage struct {
	Service *export.Service
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewExportStage(svc *export.Service, logger *slog.Logger) *ExportStage {
	if logger == nil {
		logger = slog.Default()
	}
	if svc == nil {
		svc = export.NewService(logger)
	}
	return &ExportStage{Service: svc, Logger: logger, Now: time.Now}
}

// Run writes one workbook for records. An unusable output is reported in the
// result and logged as a warning; it is not an error.
func (s *ExportStage) Run(records []entity.ReceiptRecord, opts ExportOptions) (ExportResult, error) {
	rows := normalize.Rows(records)
	res := ExportResult{Rows: len(rows), Report: normalize.Check(rows)}
	if !res.Report.OK() {
		s.Logger.Warn("export.validation.warn", "problems", res.Report.Problems)
	}

	var sellerStats []stats.SellerProduct
	if opts.Stats {
		sellerStats = stats.BySeller(rows)
	}

	name := opts.Name
	if name == "" {
		name = export.DefaultFileName(s.Now())
	}
	res.Workbook = filepath.Join(opts.Dir, name)
	if err := s.Service.WriteFile(res.Workbook, rows, sellerStats); err != nil {
		return res, err
	}

	if opts.JSON {
		b, err := s.Service.RecordsJSON(records)
		if err != nil {
			return res, err
		}
		res.JSON = strings.TrimSuffix(res.Workbook, filepath.Ext(res.Workbook)) + ".json"
		if err := os.WriteFile(res.JSON, b, 0o644); err != nil {
			return res, common.NewAppError(common.CodeExport, fmt.Sprintf("write %s", res.JSON), err)
		}
	}
	s.Logger.Info("export.stage.ok", "workbook", res.Workbook, "json", res.JSON, "rows", res.Rows)
	return res, nil
}
