// Package store provides the relational persistence layer for
// connections, authorization requests, approvals and the audit log.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adlio/schema"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	sq "github.com/Masterminds/squirrel"
)

//go:embed migrations
var migrations embed.FS

var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("the requested entry was not found")
	// ErrAlreadyExists indicates the entity already exists within the store
	ErrAlreadyExists = errors.New("this entity already exists")
)

// Store is the single owner of all persisted rows. It is safe for
// concurrent use; every write is a single statement or transaction.
type Store struct {
	log     *slog.Logger
	db      *sqlx.DB
	migrate func() error
}

// New opens (or creates) the SQLite database at path. Use ":memory:"
// for an ephemeral store in tests.
func New(logger *slog.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if path == ":memory:" {
		// shared cache keeps every pooled connection on the same database
		dsn = "file::memory:?cache=shared&_fk=1"
	} else {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, err
			}
		}
		dsn = "file:" + path + "?_fk=1&_journal=WAL"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		logger.Error("could not open database", "error", err)
		return nil, err
	}
	// sqlite writes are serialized anyway; a single connection avoids
	// SQLITE_BUSY under concurrent writers
	db.SetMaxOpenConns(1)

	migrate := func() error {
		migrator := schema.NewMigrator(schema.WithDialect(schema.SQLite))
		mig, err := schema.FSMigrations(migrations, "migrations/sqlite/*.sql")
		if err != nil {
			return err
		}
		return migrator.Apply(db, mig)
	}

	return &Store{
		log:     logger,
		db:      db,
		migrate: migrate,
	}, nil
}

// EnsureUsable applies any pending migrations.
func (s *Store) EnsureUsable() error {
	if s.migrate != nil {
		return s.migrate()
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) getStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		s.log.Error("unable to construct sql", "error", err)
		return err
	}
	return s.db.GetContext(ctx, dest, q, a...)
}

func (s *Store) selectStatement(
	ctx context.Context,
	dest interface{},
	statement sq.SelectBuilder,
) error {
	q, a, err := statement.ToSql()
	if err != nil {
		s.log.Error("unable to construct sql", "error", err)
		return err
	}
	return s.db.SelectContext(ctx, dest, q, a...)
}

func (s *Store) insertStatement(
	ctx context.Context,
	statement sq.InsertBuilder,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		s.log.Error("unable to construct sql", "error", err)
		return nil, err
	}
	return s.db.ExecContext(ctx, q, a...)
}

func (s *Store) updateStatement(
	ctx context.Context,
	statement sq.UpdateBuilder,
) (sql.Result, error) {
	q, a, err := statement.ToSql()
	if err != nil {
		s.log.Error("unable to construct sql", "error", err)
		return nil, err
	}
	return s.db.ExecContext(ctx, q, a...)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
