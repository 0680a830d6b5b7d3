package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/recibos-extractor/constants"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

type ExtractRunRepository interface {
	Start(ctx context.Context, sourcePath, format string) (*entity.ExtractRun, error)
	FinishSuccess(ctx context.Context, runID uuid.UUID, pages, receipts int) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractRun, error)
}

type extractRunRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractRunRepository(db *DB, log *slog.Logger) ExtractRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractRunRepo{db: db, log: log, now: time.Now}
}

func (r *extractRunRepo) Start(ctx context.Context, sourcePath, format string) (*entity.ExtractRun, error) {
	run := &entity.ExtractRun{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Format:     format,
		Status:     string(constants.RunStatusRunning),
		StartedAt:  r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extract_run (id, source_path, format, status, started_at) VALUES (?, ?, ?, ?, ?)`),
		run.ID.String(), run.SourcePath, run.Format, run.Status, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		r.log.Error("extract_run.start.failed", "source", sourcePath, "error", err)
		return nil, dbError("start run", err)
	}
	r.log.Info("extract_run.started", "run_id", run.ID, "source", sourcePath, "format", format)
	return run, nil
}

func (r *extractRunRepo) FinishSuccess(ctx context.Context, runID uuid.UUID, pages, receipts int) error {
	err := r.finish(ctx, runID, constants.RunStatusOK, pages, receipts, "")
	if err != nil {
		r.log.Error("extract_run.finish.failed", "run_id", runID, "status", constants.RunStatusOK, "error", err)
		return err
	}
	r.log.Info("extract_run.finished", "run_id", runID, "pages", pages, "receipts", receipts)
	return nil
}

func (r *extractRunRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	err := r.finish(ctx, runID, constants.RunStatusFailed, 0, 0, message)
	if err != nil {
		r.log.Error("extract_run.finish.failed", "run_id", runID, "status", constants.RunStatusFailed, "error", err)
		return err
	}
	r.log.Warn("extract_run.failed", "run_id", runID, "error", message)
	return nil
}

func (r *extractRunRepo) finish(ctx context.Context, runID uuid.UUID, status constants.RunStatus, pages, receipts int, message string) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE extract_run SET status = ?, pages = ?, receipts = ?, error = ?, finished_at = ? WHERE id = ?`),
		string(status), pages, receipts, message, r.now().UTC().Format(time.RFC3339Nano), runID.String())
	if err != nil {
		return dbError("finish run", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError(common.CodeNotFound, fmt.Sprintf("extract_run %s", runID), common.ErrNotFound)
	}
	return nil
}

func (r *extractRunRepo) Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractRun, error) {
	var (
		run         entity.ExtractRun
		id, started string
		finished    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, source_path, format, pages, status, error, receipts, started_at, finished_at
		 FROM extract_run WHERE id = ?`), runID.String()).
		Scan(&id, &run.SourcePath, &run.Format, &run.Pages, &run.Status, &run.Error, &run.Receipts, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeNotFound, fmt.Sprintf("extract_run %s", runID), common.ErrNotFound)
	}
	if err != nil {
		return nil, dbError("get run", err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, dbError("get run", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, dbError("get run", err)
	}
	if finished.Valid {
		t, err := time.Parse(time.RFC3339Nano, finished.String)
		if err != nil {
			return nil, dbError("get run", err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}

func dbError(message string, err error) error {
	return common.NewAppError(common.CodeDatabase, message, errors.Join(common.ErrDatabase, err))
}
