package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/ffl2sqlite/internal/core"
	"github.com/JonMunkholm/ffl2sqlite/internal/handler"
	"github.com/JonMunkholm/ffl2sqlite/internal/store/sqlite"
	"github.com/JonMunkholm/ffl2sqlite/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeAt(t, "info", args...)
}

func executeAt(t *testing.T, level string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", level)
	t.Setenv("LOG_FORMAT", "text")

	var stderr bytes.Buffer
	cmd := newRootCmd(&stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stderr.String(), err
}

func TestRootCmd_OutputFlagAfterInput(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		testutil.SampleEntry("00002").Line(),
	))
	out := filepath.Join(t.TempDir(), "licensees.db")

	logs, err := execute(t, in, "-o", out)
	if err != nil {
		t.Fatalf("execute() error = %v\n%s", err, logs)
	}
	testutil.AssertExists(t, out)

	db, err := sql.Open(sqlite.DriverName, out)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if !strings.Contains(logs, "Successfully created output") {
		t.Errorf("logs missing success line:\n%s", logs)
	}
}

func TestRootCmd_EmptyInputSucceeds(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", "\n\n")
	out := filepath.Join(t.TempDir(), "output.db")

	logs, err := execute(t, in, "--output", out)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	testutil.AssertNotExists(t, out)
	if !strings.Contains(logs, "No entries found") {
		t.Errorf("logs missing no-entries line:\n%s", logs)
	}
}

func TestRootCmd_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing input argument", args: []string{}},
		{name: "too many arguments", args: []string{"a.txt", "b.txt"}},
		{name: "input does not exist", args: []string{filepath.Join(dir, "missing.txt"), "-o", filepath.Join(dir, "out.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("execute() expected error")
			}
		})
	}
	testutil.AssertNotExists(t, filepath.Join(dir, "out.db"))
}

func TestRootCmd_DebugLogsPhases(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", testutil.Lines(
		testutil.SampleEntry("00001").Line(),
		testutil.SampleEntry("00002").Line(),
	))
	out := filepath.Join(t.TempDir(), "output.db")

	logs, err := executeAt(t, "debug", in, "-o", out)
	if err != nil {
		t.Fatalf("execute() error = %v\n%s", err, logs)
	}

	for _, want := range []string{
		"phase=starting",
		"phase=analyzing",
		"phase=committing",
		"phase=compacting",
		"phase=complete",
		"msg=Progress",
		"rows=2",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

func TestRootCmd_InfoHidesProgress(t *testing.T) {
	in := testutil.WriteFile(t, "registry.txt", testutil.Lines(testutil.SampleEntry("00001").Line()))
	out := filepath.Join(t.TempDir(), "output.db")

	logs, err := execute(t, in, "-o", out)
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if strings.Contains(logs, "msg=Progress") || strings.Contains(logs, "phase=") {
		t.Errorf("progress should only be logged at debug level:\n%s", logs)
	}
}

func TestRootCmd_ReturnsUserError(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")

	_, err := execute(t, missing, "-o", filepath.Join(dir, "out.db"))

	var ue *core.UserError
	if !errors.As(err, &ue) {
		t.Fatalf("execute() error = %T %v, want *core.UserError", err, err)
	}
	if ue.User.Code != "FILE006" {
		t.Errorf("Code = %q, want FILE006", ue.User.Code)
	}
	if !errors.Is(err, handler.ErrInputNotFound) {
		t.Errorf("technical error %v should wrap ErrInputNotFound", ue.Technical)
	}
	if !strings.Contains(ue.User.String(), "(Code: FILE006)") {
		t.Errorf("User.String() = %q", ue.User.String())
	}
}
