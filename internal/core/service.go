package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultBatchSize is the number of records handed to Tx.InsertBatch at a time.
const DefaultBatchSize = 500

// ErrNoEntries reports a run that found no data lines.
var ErrNoEntries = errors.New("no entries found")

// Service runs conversions of FFLeZCheck text into a Store.
type Service struct {
	batchSize int
	timeout   time.Duration
	limiter   *Limiter
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	BatchSize     int
	Timeout       time.Duration // 0 disables the per-run deadline
	MaxConcurrent int
	MaxWait       time.Duration
}

// NewService creates a new Service instance.
func NewService(opts Options) *Service {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		batchSize: batchSize,
		timeout:   opts.Timeout,
		limiter:   NewLimiter(opts.MaxConcurrent, opts.MaxWait),
	}
}

// Limiter returns the limiter guarding concurrent conversions.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Convert reads every record from r and writes it to store inside one
// transaction. size is the input length in bytes, or 0 if unknown.
//
// Convert never removes the destination itself: the returned Result's
// Status tells the caller whether to keep it. On failure the transaction is
// rolled back, Status is StatusFailed and the error is returned.
func (s *Service) Convert(ctx context.Context, r io.Reader, size int64, store Store, progress ProgressCallback) (Result, error) {
	startTime := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID := uuid.New().String()
	p := RunProgress{RunID: runID, Phase: PhaseStarting, BytesTotal: size}
	notify := func() {
		if progress != nil {
			progress(p)
		}
	}
	notify()

	stream, counter := WrapForStreaming(r, size)
	records := NewRecordReader(stream)

	result := Result{RunID: runID}
	fail := func(err error) (Result, error) {
		result.LinesRead = records.DataLines()
		result.BlankLines = records.BlankLines()
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		result.RowsWritten = 0
		p.Phase = PhaseFailed
		notify()
		return result, err
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return fail(fmt.Errorf("begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				slog.Warn("rollback failed", "run_id", runID, "error", rbErr)
			}
		}
	}()

	p.Phase = PhaseAnalyzing
	notify()

	batch := make([]LicenseRecord, 0, s.batchSize)
	firstLine := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("conversion cancelled: %w", err)
		}
		n, err := tx.InsertBatch(ctx, batch)
		result.RowsWritten += n
		if err != nil {
			return fmt.Errorf("insert lines %d-%d: %w", firstLine, records.LineNumber(), err)
		}
		batch = batch[:0]

		p.RowsWritten = result.RowsWritten
		p.LinesRead = records.DataLines()
		p.BytesRead = counter.BytesRead()
		notify()
		return nil
	}

	for {
		rec, ok := records.Next()
		if !ok {
			break
		}
		if len(batch) == 0 {
			firstLine = records.LineNumber()
		}
		batch = append(batch, rec)
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return fail(err)
			}
		}
	}
	if err := records.Err(); err != nil {
		return fail(err)
	}
	if err := flush(); err != nil {
		return fail(err)
	}

	p.Phase = PhaseCommitting
	notify()
	if err := tx.Commit(ctx); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}
	committed = true

	result.LinesRead = records.DataLines()
	result.BlankLines = records.BlankLines()

	if result.RowsWritten == 0 {
		result.Status = StatusEmpty
		result.Duration = time.Since(startTime)
		p.Phase = PhaseComplete
		notify()
		return result, nil
	}

	p.Phase = PhaseCompacting
	notify()
	if err := store.Compact(ctx); err != nil {
		// The data is committed but the run did not complete.
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Duration = time.Since(startTime)
		p.Phase = PhaseFailed
		notify()
		return result, fmt.Errorf("compact: %w", err)
	}

	result.Status = StatusSucceeded
	result.Duration = time.Since(startTime)
	p.Phase = PhaseComplete
	p.BytesRead = counter.BytesRead()
	notify()

	return result, nil
}
