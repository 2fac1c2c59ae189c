package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/expensekeeper/internal/client/migrations"
	"github.com/dmitrijs2005/expensekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
)

// SQLiteStore persists the session in the metadata table of a local SQLite
// database.
type SQLiteStore struct {
	db   *sql.DB
	repo metadata.Repository
}

// RunMigrations applies the embedded schema migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations up: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the session database at dsn and brings its
// schema up to date.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := dbx.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, repo: metadata.NewSQLiteRepository(db)}
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	token, ok, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		return "", false, fmt.Errorf("read session token: %w", err)
	}
	return token, ok && token != "", nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.repo.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

// Save writes the token and the email in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, token, email string) error {
	if token == "" {
		return ErrEmptyToken
	}
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, keyEmail, email)
	})
}

func (s *SQLiteStore) SetEmail(ctx context.Context, email string) error {
	if err := s.repo.Set(ctx, keyEmail, email); err != nil {
		return fmt.Errorf("write session email: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Email(ctx context.Context) (string, error) {
	email, _, err := s.repo.Get(ctx, keyEmail)
	return email, err
}

// Clear removes the token and the email in one statement.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, keyToken, keyEmail); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
