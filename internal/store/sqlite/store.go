/*
Package sqlite writes conversion runs to a fresh SQLite database file.

Create removes whatever is at the destination path, creates the file and
the entries table, and returns a Store. Every run uses one transaction:

	store, err := sqlite.Create(ctx, "output.db")
	if err != nil {
		return err
	}
	result, err := svc.Convert(ctx, input, size, store, nil)
	if !result.Status.Retain() {
		store.Discard(ctx) // removes output.db
	} else {
		store.Close()
	}

The driver is modernc.org/sqlite, so no cgo toolchain is needed. The pool
is pinned to one connection: VACUUM cannot run beside an open transaction.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var insertSQL = "INSERT INTO entries (" + strings.Join(core.Columns, ", ") + ") VALUES (" +
	strings.TrimSuffix(strings.Repeat("?, ", len(core.Columns)), ", ") + ")"

// Store is a core.Store backed by a SQLite file.
type Store struct {
	db     *sql.DB
	path   string
	closed bool
}

var _ core.Store = (*Store)(nil)

// Create removes any existing file at path and returns a Store over a new
// database with the entries schema.
func Create(ctx context.Context, path string) (*Store, error) {
	if err := Remove(path); err != nil {
		return nil, fmt.Errorf("remove existing %q: %w", path, err)
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		Remove(path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		Remove(path)
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying handle for read queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Begin starts the run transaction with a prepared insert statement.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &storeTx{tx: tx, stmt: stmt}, nil
}

// Compact rewrites the file to reclaim unused space.
func (s *Store) Compact(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Close closes the database and keeps the file.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Discard closes the database and deletes the file.
func (s *Store) Discard(ctx context.Context) error {
	closeErr := s.Close()
	if err := Remove(s.path); err != nil {
		return err
	}
	return closeErr
}

// Remove deletes a database file and its rollback journal.
// Missing files are not an error.
func Remove(path string) error {
	for _, p := range []string{path, path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Exists reports whether a file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type storeTx struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

// InsertBatch inserts records one by one and stops at the first failure.
// It returns how many rows were inserted before the failure.
func (t *storeTx) InsertBatch(ctx context.Context, records []core.LicenseRecord) (int, error) {
	for i, rec := range records {
		if _, err := t.stmt.ExecContext(ctx, rec.Values()...); err != nil {
			return i, fmt.Errorf("insert %s: %w", rec.LicenseNumber, err)
		}
	}
	return len(records), nil
}

func (t *storeTx) Commit(ctx context.Context) error {
	t.stmt.Close()
	return t.tx.Commit()
}

func (t *storeTx) Rollback(ctx context.Context) error {
	t.stmt.Close()
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
