// Package postgres loads conversion runs into the entries table of a
// PostgreSQL database.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tableName = "entries"

const createTable = `
CREATE TABLE entries (
    uid                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    license_number      TEXT NOT NULL UNIQUE,
    license_name        TEXT NOT NULL,
    business_name       TEXT,
    premise_street      TEXT NOT NULL,
    premise_city        TEXT NOT NULL,
    premise_state       TEXT NOT NULL,
    premise_zip         TEXT NOT NULL,
    mailing_street      TEXT NOT NULL,
    mailing_city        TEXT NOT NULL,
    mailing_state       TEXT NOT NULL,
    mailing_zip         TEXT NOT NULL,
    voice_telephone     TEXT NOT NULL,
    loa_issue_date      TEXT,
    loa_expiration_date TEXT
)`

// IsURL reports whether dest names a PostgreSQL database rather than a file.
func IsURL(dest string) bool {
	return strings.HasPrefix(dest, "postgres://") || strings.HasPrefix(dest, "postgresql://")
}

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxConns int
	MinConns int
}

// Store is a core.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// Open connects to url and rebuilds the entries table from scratch.
func Open(ctx context.Context, url string, opts PoolOptions) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.reset(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Pool exposes the connection pool for read queries.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+tableName); err != nil {
		return fmt.Errorf("drop existing table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Begin starts the run transaction.
func (s *Store) Begin(ctx context.Context) (core.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

// Compact reclaims space and refreshes planner statistics.
func (s *Store) Compact(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "VACUUM ANALYZE "+tableName)
	return err
}

// Discard drops the entries table and closes the pool.
func (s *Store) Discard(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+tableName)
	s.pool.Close()
	return err
}

// Close closes the pool and keeps the table.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type storeTx struct {
	tx pgx.Tx
}

// InsertBatch streams the batch with COPY. A failing batch inserts nothing.
func (t *storeTx) InsertBatch(ctx context.Context, records []core.LicenseRecord) (int, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = rec.Values()
	}

	n, err := t.tx.CopyFrom(ctx, pgx.Identifier{tableName}, core.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", tableName, err)
	}
	return int(n), nil
}

func (t *storeTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *storeTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
