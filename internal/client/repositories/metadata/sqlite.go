package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
)

const (
	selectValue = `SELECT value FROM metadata WHERE key = ?`
	upsertValue = `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteKeys = `DELETE FROM metadata WHERE key IN (%s)`
)

// SQLiteRepository works on a *sql.DB or on a *sql.Tx, so the session store
// can group writes in one transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	switch err := r.db.QueryRowContext(ctx, selectValue, key).Scan(&v); {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("metadata get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("metadata set %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(deleteKeys, marks), args...); err != nil {
		return fmt.Errorf("metadata delete %v: %w", keys, err)
	}
	return nil
}
