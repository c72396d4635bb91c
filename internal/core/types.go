package core

import (
	"context"
	"time"
)

// LicenseRecord is one row of the entries table, parsed from one non-blank input line.
// Optional columns are nil when absent.
type LicenseRecord struct {
	LicenseNumber     string  `json:"license_number"`
	LicenseName       string  `json:"license_name"`
	BusinessName      *string `json:"business_name"`
	PremiseStreet     string  `json:"premise_street"`
	PremiseCity       string  `json:"premise_city"`
	PremiseState      string  `json:"premise_state"`
	PremiseZip        string  `json:"premise_zip"`
	MailingStreet     string  `json:"mailing_street"`
	MailingCity       string  `json:"mailing_city"`
	MailingState      string  `json:"mailing_state"`
	MailingZip        string  `json:"mailing_zip"`
	VoiceTelephone    string  `json:"voice_telephone"`
	LoaIssueDate      *string `json:"loa_issue_date"`
	LoaExpirationDate *string `json:"loa_expiration_date"`
}

// Columns lists the entries columns written on insert, in Values order.
// uid is assigned by the store.
var Columns = []string{
	"license_number",
	"license_name",
	"business_name",
	"premise_street",
	"premise_city",
	"premise_state",
	"premise_zip",
	"mailing_street",
	"mailing_city",
	"mailing_state",
	"mailing_zip",
	"voice_telephone",
	"loa_issue_date",
	"loa_expiration_date",
}

// Values returns the record as a row matching Columns.
// Nil optional fields stay untyped nil so drivers write NULL.
func (r LicenseRecord) Values() []any {
	return []any{
		r.LicenseNumber,
		r.LicenseName,
		nullable(r.BusinessName),
		r.PremiseStreet,
		r.PremiseCity,
		r.PremiseState,
		r.PremiseZip,
		r.MailingStreet,
		r.MailingCity,
		r.MailingState,
		r.MailingZip,
		r.VoiceTelephone,
		nullable(r.LoaIssueDate),
		nullable(r.LoaExpirationDate),
	}
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Store persists records for a single conversion run.
// Implementations build a fresh destination when opened.
type Store interface {
	// Begin starts the transaction that holds every row of the run.
	Begin(ctx context.Context) (Tx, error)
	// Compact reclaims unused space after a committed run.
	Compact(ctx context.Context) error
	// Discard removes the destination entirely and releases the store.
	Discard(ctx context.Context) error
	// Close releases the store and keeps the destination.
	Close() error
}

// Tx is the scoped transaction of a run. Nothing is visible until Commit.
type Tx interface {
	InsertBatch(ctx context.Context, records []LicenseRecord) (int, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// RunStatus is the terminal state of a conversion run.
type RunStatus string

const (
	// StatusSucceeded means at least one row was committed and the output is kept.
	StatusSucceeded RunStatus = "succeeded"
	// StatusEmpty means no data lines were found; the output should be removed.
	StatusEmpty RunStatus = "empty"
	// StatusFailed means the run aborted; nothing was committed.
	StatusFailed RunStatus = "failed"
)

// Retain reports whether the destination should be kept.
func (s RunStatus) Retain() bool {
	return s == StatusSucceeded
}

// RunPhase indicates the current stage of a conversion.
type RunPhase string

const (
	PhaseStarting   RunPhase = "starting"
	PhaseAnalyzing  RunPhase = "analyzing"
	PhaseCommitting RunPhase = "committing"
	PhaseCompacting RunPhase = "compacting"
	PhaseComplete   RunPhase = "complete"
	PhaseFailed     RunPhase = "failed"
)

// RunProgress represents the current state of a conversion.
type RunProgress struct {
	RunID       string
	Phase       RunPhase
	LinesRead   int
	RowsWritten int
	BytesRead   int64
	BytesTotal  int64 // 0 when unknown
}

// Percent returns byte-based progress (0-100), or 0 when the size is unknown.
func (p RunProgress) Percent() int {
	if p.BytesTotal <= 0 {
		return 0
	}
	return int((p.BytesRead * 100) / p.BytesTotal)
}

// ProgressCallback is called after every batch and on phase changes.
type ProgressCallback func(RunProgress)

// Result is the outcome of a conversion run. The caller decides from Status
// whether to keep the destination.
type Result struct {
	RunID       string
	Status      RunStatus
	LinesRead   int // data lines, blank lines excluded
	BlankLines  int
	RowsWritten int
	Duration    time.Duration
	Error       string // Non-empty if Status is StatusFailed
}
