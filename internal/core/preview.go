package core

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// PreviewSummary contains the summary counts for a conversion preview.
type PreviewSummary struct {
	DataLines       int `json:"dataLines"`
	BlankLines      int `json:"blankLines"`
	ShortLines      int `json:"shortLines"`
	DuplicateInFile int `json:"duplicateInFile"`
}

// RecordPreview is one parsed record for preview display.
type RecordPreview struct {
	LineNumber int           `json:"lineNumber"`
	Record     LicenseRecord `json:"record"`
}

// ShortLinePreview is a data line narrower than RecordWidth. It still
// converts, with the missing fields left empty.
type ShortLinePreview struct {
	LineNumber    int    `json:"lineNumber"`
	LicenseNumber string `json:"licenseNumber"`
	Width         int    `json:"width"`
}

// DuplicatePreview lists the lines sharing one license number.
type DuplicatePreview struct {
	LicenseNumber string `json:"licenseNumber"`
	LineNumbers   []int  `json:"lineNumbers"`
}

// PreviewResponse is the result of a read-only analysis of an input.
type PreviewResponse struct {
	Summary          PreviewSummary     `json:"summary"`
	WouldSucceed     bool               `json:"wouldSucceed"`
	RecordSamples    []RecordPreview    `json:"recordSamples"`
	ShortLineSamples []ShortLinePreview `json:"shortLineSamples"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRecordSamples    = 10
	maxShortLineSamples = 20
	maxDuplicateSamples = 10
)

// Preview reads r without writing anywhere and reports what a conversion
// would do. Duplicate license numbers, which would abort the conversion,
// are listed with every line they occur on.
//
// Read errors such as invalid UTF-8 are returned as errors, as Convert
// would fail on them too.
func (s *Service) Preview(ctx context.Context, r io.Reader) (*PreviewResponse, error) {
	startTime := time.Now()

	stream, _ := WrapForStreaming(r, 0)
	records := NewRecordReader(stream)

	resp := &PreviewResponse{
		RecordSamples:    []RecordPreview{},
		ShortLineSamples: []ShortLinePreview{},
		DuplicateSamples: []DuplicatePreview{},
	}

	seen := make(map[string][]int)
	var order []string

	for {
		rec, ok := records.Next()
		if !ok {
			break
		}
		line := records.LineNumber()

		if records.DataLines()%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("preview cancelled: %w", err)
			}
		}

		if len(resp.RecordSamples) < maxRecordSamples {
			resp.RecordSamples = append(resp.RecordSamples, RecordPreview{LineNumber: line, Record: rec})
		}

		if width := utf8.RuneCountInString(records.Text()); width < RecordWidth {
			resp.Summary.ShortLines++
			if len(resp.ShortLineSamples) < maxShortLineSamples {
				resp.ShortLineSamples = append(resp.ShortLineSamples, ShortLinePreview{
					LineNumber:    line,
					LicenseNumber: rec.LicenseNumber,
					Width:         width,
				})
			}
		}

		if _, dup := seen[rec.LicenseNumber]; !dup {
			order = append(order, rec.LicenseNumber)
		}
		seen[rec.LicenseNumber] = append(seen[rec.LicenseNumber], line)
	}
	if err := records.Err(); err != nil {
		return nil, err
	}

	for _, key := range order {
		lines := seen[key]
		if len(lines) < 2 {
			continue
		}
		resp.Summary.DuplicateInFile += len(lines) - 1
		if len(resp.DuplicateSamples) < maxDuplicateSamples {
			resp.DuplicateSamples = append(resp.DuplicateSamples, DuplicatePreview{
				LicenseNumber: key,
				LineNumbers:   lines,
			})
		}
	}

	resp.Summary.DataLines = records.DataLines()
	resp.Summary.BlankLines = records.BlankLines()
	resp.WouldSucceed = resp.Summary.DataLines > 0 && resp.Summary.DuplicateInFile == 0
	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	return resp, nil
}
