package conn

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/joinery/internal/errs"
)

// Querier runs statements for the query engine.
type Querier interface {
	// Query runs a statement and returns a cursor over its results.
	Query(ctx context.Context, query string, params []any) (Cursor, error)

	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, query string, params []any) (int64, error)
}

// DB is a Querier backed by database/sql.
type DB struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

var _ Querier = (*DB)(nil)

// Open connects to dsn with a registered driver: "sqlite3" (cgo),
// "sqlite" (pure Go), "postgres" or "mysql".
//
// SQLite connections are configured with:
//   - WAL journal mode
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - foreign key enforcement
//   - a single open connection
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errs.WrapDriver("open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.WrapDriver("connect to database", err)
	}

	if dialect == DialectSQLite {
		// SQLite allows one writer; a single connection also keeps
		// per-connection pragmas in effect.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return New(db, dialect, opts...), nil
}

// New wraps an existing *sql.DB.
func New(db *sql.DB, dialect Dialect, opts ...Option) *DB {
	d := &DB{db: db, dialect: dialect, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errs.WrapDriver(fmt.Sprintf("execute %q", pragma), err)
		}
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQLDB returns the underlying *sql.DB.
func (d *DB) SQLDB() *sql.DB {
	return d.db
}

// Dialect returns the placeholder dialect.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Query implements Querier.
func (d *DB) Query(ctx context.Context, query string, params []any) (Cursor, error) {
	text, args, err := d.dialect.Rebind(query, params)
	if err != nil {
		return nil, errs.WrapDriver("bind parameters", err)
	}
	d.logger.DebugContext(ctx, "query", "sql", text, "params", len(args))

	rows, err := d.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, errs.WrapDriver("query", err)
	}
	return newRowsCursor(rows), nil
}

// Exec implements Querier.
func (d *DB) Exec(ctx context.Context, query string, params []any) (int64, error) {
	text, args, err := d.dialect.Rebind(query, params)
	if err != nil {
		return 0, errs.WrapDriver("bind parameters", err)
	}
	d.logger.DebugContext(ctx, "exec", "sql", text, "params", len(args))

	res, err := d.db.ExecContext(ctx, text, args...)
	if err != nil {
		return 0, errs.WrapDriver("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errs.WrapDriver("rows affected", err)
	}
	return n, nil
}
