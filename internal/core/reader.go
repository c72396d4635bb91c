package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxLineLength bounds a single input line. Records are RecordWidth
// characters; the slack covers multi-byte names and stray trailing data.
var MaxLineLength = 64 * 1024

// ContextCheckInterval is how often, in records, long loops check for
// cancellation outside of batch boundaries.
var ContextCheckInterval = 1000

// ErrInvalidEncoding is returned when a line is not valid UTF-8.
var ErrInvalidEncoding = errors.New("encoding error: input is not valid UTF-8")

// RecordReader scans fixed-width records from a text stream.
//
// Exactly-empty lines are skipped. Every other line, including short or
// whitespace-only ones, is a data line and yields a record.
type RecordReader struct {
	scanner    *bufio.Scanner
	text       string
	lineNumber int
	blank      int
	data       int
	err        error
}

// NewRecordReader creates a RecordReader over r.
func NewRecordReader(r io.Reader) *RecordReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(4096, MaxLineLength)), MaxLineLength)
	return &RecordReader{scanner: scanner}
}

// Next returns the next record. It returns false at end of input or on
// error; check Err afterwards.
func (r *RecordReader) Next() (LicenseRecord, bool) {
	if r.err != nil {
		return LicenseRecord{}, false
	}

	for r.scanner.Scan() {
		r.lineNumber++
		line := r.scanner.Text()

		if line == "" {
			r.blank++
			continue
		}
		if !utf8.ValidString(line) {
			r.err = fmt.Errorf("line %d: %w", r.lineNumber, ErrInvalidEncoding)
			return LicenseRecord{}, false
		}

		r.data++
		r.text = line
		return ParseLine(line), true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("read line %d: %w", r.lineNumber+1, err)
	}
	return LicenseRecord{}, false
}

// Err returns the first error encountered, or nil at a clean end of input.
func (r *RecordReader) Err() error {
	return r.err
}

// Text returns the raw text of the last record returned by Next.
func (r *RecordReader) Text() string {
	return r.text
}

// LineNumber returns the 1-based number of the last line scanned.
func (r *RecordReader) LineNumber() int {
	return r.lineNumber
}

// DataLines returns the number of data lines returned so far.
func (r *RecordReader) DataLines() int {
	return r.data
}

// BlankLines returns the number of empty lines skipped so far.
func (r *RecordReader) BlankLines() int {
	return r.blank
}
