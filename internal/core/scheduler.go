package core

// scheduler.go provides background maintenance for the HTTP service.
//
// Each conversion request builds its database under the work dir and
// removes it once the response is written. A crash or kill can leave those
// files behind, so the sweeper periodically deletes run databases older
// than a cutoff. Only names the service generates (a uuid plus ".db" or
// ".db-journal") are touched.

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SweepConfig holds configuration for the work dir sweeper.
type SweepConfig struct {
	Dir           string        // Work dir to clean; empty disables the sweeper
	MaxAge        time.Duration // Files older than this are removed (default: 1h)
	CheckInterval time.Duration // How often to run (default: 10m)
}

// StartSweepScheduler removes stale run databases from cfg.Dir.
// It runs immediately on start, then every CheckInterval, and stops when
// ctx is cancelled.
func StartSweepScheduler(ctx context.Context, cfg SweepConfig) {
	if cfg.Dir == "" {
		return
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 10 * time.Minute
	}

	slog.Info("sweep scheduler started",
		"dir", cfg.Dir,
		"max_age", cfg.MaxAge,
		"interval", cfg.CheckInterval,
	)

	runSweepJob(cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweep scheduler stopped")
			return
		case <-ticker.C:
			runSweepJob(cfg)
		}
	}
}

func runSweepJob(cfg SweepConfig) {
	start := time.Now()
	removed, err := SweepWorkDir(cfg.Dir, time.Now().Add(-cfg.MaxAge))
	if err != nil {
		slog.Error("sweep failed", "dir", cfg.Dir, "error", err)
		return
	}
	if removed > 0 {
		slog.Info("removed stale run databases",
			"files_removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// SweepWorkDir deletes run databases in dir last modified before cutoff and
// returns how many files it removed.
func SweepWorkDir(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isRunDatabase(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			slog.Warn("failed to remove stale run database", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// isRunDatabase reports whether name is "<uuid>.db" or "<uuid>.db-journal".
func isRunDatabase(name string) bool {
	base, ok := strings.CutSuffix(name, ".db-journal")
	if !ok {
		base, ok = strings.CutSuffix(name, ".db")
	}
	if !ok {
		return false
	}
	_, err := uuid.Parse(base)
	return err == nil
}
