// Package handler runs a conversion from an input file or stream into a
// destination store and decides whether the destination is kept.
package handler

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/postgres"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/sqlite"
)

// StoreOpener creates the destination store for a run. Opening replaces
// whatever the destination held before.
type StoreOpener func(ctx context.Context, log *slog.Logger) (core.Store, error)

// Options configures a pipeline run. The zero value is usable.
type Options struct {
	Service  *core.Service // nil uses a service with default settings
	Logger   *slog.Logger  // nil uses slog.Default()
	Progress core.ProgressCallback
}

func (o Options) service() *core.Service {
	if o.Service != nil {
		return o.Service
	}
	return core.NewService(core.Options{})
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// SQLiteOpener returns an opener that builds a fresh SQLite file at path.
func SQLiteOpener(path string) StoreOpener {
	return func(ctx context.Context, log *slog.Logger) (core.Store, error) {
		if sqlite.Exists(path) {
			log.Info("Deleting existing database", "output", path)
		}
		log.Info("Creating database", "output", path)
		log.Info("Initializing database")
		return sqlite.Create(ctx, path)
	}
}

// PostgresOpener returns an opener that rebuilds the entries table in the
// database at url.
func PostgresOpener(url string, opts postgres.PoolOptions) StoreOpener {
	return func(ctx context.Context, log *slog.Logger) (core.Store, error) {
		log.Info("Initializing database", "output", "postgres")
		return postgres.Open(ctx, url, opts)
	}
}

// OpenerFor picks the store for dest: a postgres:// or postgresql:// URL
// selects PostgreSQL, anything else is a SQLite file path.
func OpenerFor(dest string, pg postgres.PoolOptions) StoreOpener {
	if postgres.IsURL(dest) {
		return PostgresOpener(dest, pg)
	}
	return SQLiteOpener(dest)
}
