// Package dbx holds the small database/sql helpers behind the local session
// database: the DBTX handle shared by *sql.DB and *sql.Tx, a SQLite opener
// and a transaction runner.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const busyTimeoutMillis = 5000

// OpenSQLite opens the SQLite database at dsn on a single connection, so a
// ":memory:" database stays the same database for every query, and waits on
// a locked file instead of failing at once.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure %s: %w", dsn, err)
	}
	return db, nil
}

// WithTx runs fn inside a transaction on db. The transaction commits when fn
// returns nil and rolls back otherwise; a panic in fn rolls back and is
// re-raised. A failed rollback is joined to the error of fn.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}
