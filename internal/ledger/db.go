// Package ledger records the terminal disposition of every file a pipeline stage touches.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

// DB is an open ledger database plus the SQL dialect its statements are built for.
type DB struct {
	db      *sql.DB
	dialect string
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Open connects to the configured ledger database. sqlite goes through the pure-Go
// modernc driver; postgres through a pgx pool wrapped as *sql.DB.
func Open(ctx context.Context, cfg common.LedgerConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ledger.db.connecting", "driver", cfg.Driver)

	switch cfg.Driver {
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("ledger.db.connect_failed", "driver", cfg.Driver, "error", err)
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer; sqlite serializes anyway and this avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		return &DB{db: db, dialect: dialect.SQLite, logger: logger}, nil

	case "postgres":
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("ledger.db.connect_failed", "driver", cfg.Driver, "error", err)
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			pc.MinConns = cfg.MinConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "invoice-auditor"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("ledger.db.connect_failed", "driver", cfg.Driver, "error", err)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &DB{db: stdlib.OpenDBFromPool(pool), dialect: dialect.Postgres, pool: pool, logger: logger}, nil
	}
	return nil, fmt.Errorf("unsupported ledger driver %q", cfg.Driver)
}

// NewDB wraps an existing connection; dialectName is one of entgo.io/ent/dialect's names.
func NewDB(db *sql.DB, dialectName string, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{db: db, dialect: dialectName, logger: logger}
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	d.logger.Debug("ledger.db.closing")
	if err := d.db.Close(); err != nil {
		d.logger.Error("ledger.db.close_failed", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.db.PingContext(ctx); err != nil {
		d.logger.Error("ledger.db.ping_failed", "error", err)
		return err
	}
	d.logger.Debug("ledger.db.ping_ok")
	return nil
}

const createDispositions = `CREATE TABLE IF NOT EXISTS dispositions (
	stage        TEXT NOT NULL,
	file_key     TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	failure_kind TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	output_path  TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL DEFAULT '',
	updated_at   BIGINT NOT NULL,
	PRIMARY KEY (stage, file_key)
)`

// Migrate creates the ledger table if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, createDispositions); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}
