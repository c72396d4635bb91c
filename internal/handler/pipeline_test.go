package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/postgres"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/sqlite"
	"github.com/JonMunkholm/ffl2sqlite/internal/testutil"
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func licenseNumbers(t *testing.T, path string) []string {
	t.Helper()

	db, err := sql.Open(sqlite.DriverName, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT license_number FROM entries ORDER BY uid")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestConvertFile_WritesEveryDataLine(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		"",
		testutil.SampleEntry("00002").Line(),
		"",
		"",
		testutil.SampleEntry("00003").Line(),
	))
	out := filepath.Join(t.TempDir(), "output.db")

	result, err := ConvertFile(context.Background(), in, SQLiteOpener(out), quietOptions())
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	if result.Status != core.StatusSucceeded {
		t.Errorf("Status = %q, want succeeded", result.Status)
	}
	if result.RowsWritten != 3 || result.BlankLines != 3 {
		t.Errorf("RowsWritten = %d, BlankLines = %d, want 3 and 3", result.RowsWritten, result.BlankLines)
	}

	got := licenseNumbers(t, out)
	want := []string{"9-86-073-01-7K-00001", "9-86-073-01-7K-00002", "9-86-073-01-7K-00003"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("license numbers = %v, want %v", got, want)
	}
}

func TestConvertFile_BlankInputDeletesOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty file", input: ""},
		{name: "only newlines", input: "\n\n\n"},
		{name: "only CRLF", input: "\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.WriteFile(t, "registry.txt", tt.input)
			out := filepath.Join(t.TempDir(), "output.db")

			result, err := ConvertFile(context.Background(), in, SQLiteOpener(out), quietOptions())
			if err != nil {
				t.Fatalf("ConvertFile() error = %v", err)
			}
			if result.Status != core.StatusEmpty {
				t.Errorf("Status = %q, want empty", result.Status)
			}
			if result.RowsWritten != 0 {
				t.Errorf("RowsWritten = %d, want 0", result.RowsWritten)
			}
			testutil.AssertNotExists(t, out)
		})
	}
}

func TestConvertFile_DuplicateDeletesOutput(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		testutil.SampleEntry("00002").Line(),
		testutil.SampleEntry("00001").Line(),
	))
	out := filepath.Join(t.TempDir(), "output.db")

	result, err := ConvertFile(context.Background(), in, SQLiteOpener(out), quietOptions())
	if err == nil {
		t.Fatal("ConvertFile() should fail on a duplicate license number")
	}
	if result.Status != core.StatusFailed {
		t.Errorf("Status = %q, want failed", result.Status)
	}
	if result.RowsWritten != 0 {
		t.Errorf("RowsWritten = %d, want 0 after rollback", result.RowsWritten)
	}
	if code := core.MapError(err).Code; code != "DB002" {
		t.Errorf("MapError().Code = %q, want DB002 (err = %v)", code, err)
	}
	testutil.AssertNotExists(t, out)
}

func TestConvertFile_InvalidEncodingDeletesOutput(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt",
		testutil.SampleEntry("00001").Line()+"\n\xff\xfe broken\n")
	out := filepath.Join(t.TempDir(), "output.db")

	_, err := ConvertFile(context.Background(), in, SQLiteOpener(out), quietOptions())
	if !errors.Is(err, core.ErrInvalidEncoding) {
		t.Fatalf("error = %v, want ErrInvalidEncoding", err)
	}
	testutil.AssertNotExists(t, out)
}

func TestConvertFile_ReplacesPreviousOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.db")

	first := testutil.WriteFile(t, "first.txt", testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		testutil.SampleEntry("00002").Line(),
	))
	if _, err := ConvertFile(context.Background(), first, SQLiteOpener(out), quietOptions()); err != nil {
		t.Fatalf("first ConvertFile() error = %v", err)
	}

	second := testutil.WriteFile(t, "second.txt", testutil.Lines(
		testutil.SampleEntry("00009").Line(),
	))
	if _, err := ConvertFile(context.Background(), second, SQLiteOpener(out), quietOptions()); err != nil {
		t.Fatalf("second ConvertFile() error = %v", err)
	}

	got := licenseNumbers(t, out)
	if len(got) != 1 || got[0] != "9-86-073-01-7K-00009" {
		t.Errorf("license numbers = %v, want only the second input", got)
	}
}

func TestConvertFile_MissingInputLeavesOutputAlone(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.db")

	result, err := ConvertFile(context.Background(), filepath.Join(dir, "missing.txt"), SQLiteOpener(out), quietOptions())
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("error = %v, want ErrInputNotFound", err)
	}
	if result.Status != core.StatusFailed {
		t.Errorf("Status = %q, want failed", result.Status)
	}
	if code := core.MapError(err).Code; code != "FILE006" {
		t.Errorf("MapError().Code = %q, want FILE006", code)
	}
	testutil.AssertNotExists(t, out)
}

func TestConvertReader_ReportsProgress(t *testing.T) {
	input := testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		testutil.SampleEntry("00002").Line(),
	)
	out := filepath.Join(t.TempDir(), "output.db")

	var phases []core.RunPhase
	opts := quietOptions()
	opts.Progress = func(p core.RunProgress) {
		phases = append(phases, p.Phase)
	}

	result, err := ConvertReader(context.Background(), strings.NewReader(input), int64(len(input)), SQLiteOpener(out), opts)
	if err != nil {
		t.Fatalf("ConvertReader() error = %v", err)
	}
	if result.RowsWritten != 2 {
		t.Errorf("RowsWritten = %d, want 2", result.RowsWritten)
	}
	if len(phases) == 0 || phases[len(phases)-1] != core.PhaseComplete {
		t.Errorf("phases = %v, want to end with %q", phases, core.PhaseComplete)
	}
	testutil.AssertExists(t, out)
}

func TestOpenerFor(t *testing.T) {
	// A file path must produce a working SQLite opener.
	out := filepath.Join(t.TempDir(), "output.db")
	store, err := OpenerFor(out, postgres.PoolOptions{})(context.Background(), quietOptions().logger())
	if err != nil {
		t.Fatalf("opener error = %v", err)
	}
	defer store.Close()

	if _, ok := store.(*sqlite.Store); !ok {
		t.Errorf("store type = %T, want *sqlite.Store", store)
	}
}
