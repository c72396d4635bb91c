// Package testutil builds FFLeZCheck fixture lines and files for tests.
//
// The column widths are written out here independently of core.Layout so
// tests check the parser against a second description of the format.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Entry holds the raw values of one fixture record. Values are padded or
// truncated to their column width by Line.
type Entry struct {
	Region   string // 1
	District string // 2
	County   string // 3
	Type     string // 2
	Expiry   string // 2
	Sequence string // 5

	LicenseName  string // 50
	BusinessName string // 50

	PremiseStreet string // 50
	PremiseCity   string // 30
	PremiseState  string // 2
	PremiseZip    string // 9

	MailingStreet string // 50
	MailingCity   string // 30
	MailingState  string // 2
	MailingZip    string // 9

	PhoneArea   string // 3
	PhonePrefix string // 3
	PhoneLine   string // 4

	IssueMonth string // 2
	IssueDay   string // 2
	IssueYear  string // 4

	ExpirationMonth string // 2
	ExpirationDay   string // 2
	ExpirationYear  string // 4
}

// Line renders the entry as a fixed-width line without a terminator.
func (e Entry) Line() string {
	var b strings.Builder
	cols := []struct {
		value string
		width int
	}{
		{e.Region, 1}, {e.District, 2}, {e.County, 3}, {e.Type, 2}, {e.Expiry, 2}, {e.Sequence, 5},
		{e.LicenseName, 50}, {e.BusinessName, 50},
		{e.PremiseStreet, 50}, {e.PremiseCity, 30}, {e.PremiseState, 2}, {e.PremiseZip, 9},
		{e.MailingStreet, 50}, {e.MailingCity, 30}, {e.MailingState, 2}, {e.MailingZip, 9},
		{e.PhoneArea, 3}, {e.PhonePrefix, 3}, {e.PhoneLine, 4},
		{e.IssueMonth, 2}, {e.IssueDay, 2}, {e.IssueYear, 4},
		{e.ExpirationMonth, 2}, {e.ExpirationDay, 2}, {e.ExpirationYear, 4},
	}
	for _, c := range cols {
		b.WriteString(Pad(c.value, c.width))
	}
	return b.String()
}

// Pad left-aligns s in a field of width characters.
func Pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// SampleEntry returns a complete, realistic entry. seq varies the license
// sequence number so several samples stay unique.
func SampleEntry(seq string) Entry {
	return Entry{
		Region:          "9",
		District:        "86",
		County:          "073",
		Type:            "01",
		Expiry:          "7K",
		Sequence:        seq,
		LicenseName:     "SMITH, JOHN A",
		BusinessName:    "DESERT SPORTING GOODS",
		PremiseStreet:   "1234 W MAIN ST",
		PremiseCity:     "PHOENIX",
		PremiseState:    "AZ",
		PremiseZip:      "850011234",
		MailingStreet:   "PO BOX 55",
		MailingCity:     "PHOENIX",
		MailingState:    "AZ",
		MailingZip:      "85001",
		PhoneArea:       "602",
		PhonePrefix:     "555",
		PhoneLine:       "0199",
		IssueMonth:      "03",
		IssueDay:        "15",
		IssueYear:       "2021",
		ExpirationMonth: "03",
		ExpirationDay:   "01",
		ExpirationYear:  "2027",
	}
}

// Lines joins lines with "\n" and appends a final newline.
func Lines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes content to name inside a per-test temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// AssertNotExists fails the test if path exists.
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected %s to be removed", path)
	} else if !os.IsNotExist(err) {
		t.Errorf("stat %s: %v", path, err)
	}
}

// AssertExists fails the test if path does not exist.
func AssertExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}
