package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
)

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input not found")

/* ----------------------------------------
	Main entry for converting
---------------------------------------- */

// ConvertFile converts the fixed-width file at in into the store returned
// by open.
//
// The input is opened first, so a missing input never touches the
// destination. An empty or failed run discards the destination.
func ConvertFile(ctx context.Context, in string, open StoreOpener, opts Options) (core.Result, error) {
	log := opts.logger().With("input", in)

	log.Info("Opening input")
	f, err := os.Open(in)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrInputNotFound, in)
		} else {
			err = fmt.Errorf("open input: %w", err)
		}
		return core.Result{Status: core.StatusFailed, Error: err.Error()}, err
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	opts.Logger = log
	return ConvertReader(ctx, f, size, open, opts)
}

// ConvertReader converts r, of size bytes (0 if unknown), into the store
// returned by open. It applies the same retention rules as ConvertFile.
func ConvertReader(ctx context.Context, r io.Reader, size int64, open StoreOpener, opts Options) (core.Result, error) {
	log := opts.logger()

	store, err := open(ctx, log)
	if err != nil {
		err = fmt.Errorf("open output: %w", err)
		return core.Result{Status: core.StatusFailed, Error: err.Error()}, err
	}

	log.Info("Analyzing input data")
	result, convErr := opts.service().Convert(ctx, r, size, store, opts.Progress)
	log = log.With("run_id", result.RunID)

	if !result.Status.Retain() {
		if result.Status == core.StatusEmpty {
			log.Warn("No entries found. Deleting output", "blank_lines", result.BlankLines)
		} else {
			log.Error("Conversion failed. Deleting output",
				"error", convErr,
				"code", core.MapError(convErr).Code,
			)
		}
		if err := store.Discard(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to delete output", "error", err)
		}
		return result, convErr
	}

	if err := store.Close(); err != nil {
		return result, fmt.Errorf("close output: %w", err)
	}

	log.Info("Successfully created output",
		"rows", result.RowsWritten,
		"blank_lines", result.BlankLines,
		"duration", result.Duration,
	)
	return result, nil
}
