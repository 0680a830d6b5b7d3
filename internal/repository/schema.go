package repository

import (
	"context"
	"fmt"
)

// Identifiers are uuid text and timestamps RFC 3339 text so the same DDL runs on
// SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS extract_run (
		id          TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		format      TEXT NOT NULL,
		pages       INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		receipts    INTEGER NOT NULL DEFAULT 0,
		started_at  TEXT NOT NULL,
		finished_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS receipt (
		id       TEXT PRIMARY KEY,
		run_id   TEXT NOT NULL REFERENCES extract_run(id) ON DELETE CASCADE,
		ordinal  INTEGER NOT NULL,
		number   TEXT NOT NULL DEFAULT '',
		seller   TEXT NOT NULL DEFAULT '',
		customer TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS receipt_run_idx ON receipt (run_id, ordinal)`,
	`CREATE TABLE IF NOT EXISTS product_line (
		receipt_id  TEXT NOT NULL REFERENCES receipt(id) ON DELETE CASCADE,
		ordinal     INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity    TEXT NOT NULL,
		unit_price  TEXT NOT NULL,
		unit        TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (receipt_id, ordinal)
	)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
