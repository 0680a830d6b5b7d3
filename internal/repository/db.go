package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/recibos-extractor/constants"
	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	DialTimeout  time.Duration
}

// ConfigFrom maps the application database section onto a repository Config.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		Driver:       c.Driver,
		DSN:          c.DSN,
		MaxOpenConns: c.MaxOpenConns,
		DialTimeout:  c.DialTimeout,
	}
}

// DB is a database/sql handle that knows its dialect.
type DB struct {
	*sql.DB
	driver string
	pool   *pgxpool.Pool
}

// Open connects to the configured store and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("db.connect", "driver", cfg.Driver)

	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case constants.DriverSQLite, "":
		db, err = openSQLite(cfg)
	case constants.DriverPgx:
		db, err = openPgx(ctx, cfg)
	default:
		err = fmt.Errorf("unknown driver %q: %w", cfg.Driver, common.ErrInvalidInput)
	}
	if err != nil {
		logger.Error("db.connect.failed", "driver", cfg.Driver, "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "open database", err)
	}

	if err := db.migrate(ctx); err != nil {
		Close(db, logger)
		logger.Error("db.migrate.failed", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "apply schema", err)
	}
	logger.Info("db.connect.ok", "driver", db.driver)
	return db, nil
}

func openSQLite(cfg Config) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; also keeps ":memory:" on one connection
	sqldb.SetMaxOpenConns(1)
	if _, err := sqldb.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return &DB{DB: sqldb, driver: constants.DriverSQLite}, nil
}

func openPgx(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "recibos-extractor"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &DB{DB: stdlib.OpenDBFromPool(pool), driver: constants.DriverPgx, pool: pool}, nil
}

// Driver returns the dialect in use.
func (d *DB) Driver() string { return d.driver }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != constants.DriverPgx {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.DB.Close(); err != nil {
		logger.Error("db.close.failed", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("db.closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("db.ping.failed", "error", err)
		return common.NewAppError(common.CodeDatabase, "ping", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	logger.Debug("db.ping.ok")
	return nil
}
