package core

// convert.go turns raw fixed-width segments into the stored column values.
//
// The registry pads every field with spaces, so text fields are trimmed and
// a handful of fields are reformatted:
//   - Zip codes longer than 5 characters gain a hyphen (ZIP+4)
//   - Phone numbers are rendered +1 (AAA) BBB-CCCC
//   - License numbers join their six segments with hyphens
//   - LOA dates are reordered from MMDDYYYY to YYYY-MM-DD
//
// Optional columns are returned as *string, nil meaning NULL. None of the
// formatters are idempotent; each is applied exactly once per field.

import "strings"

// dateLength is the length of a complete YYYY-MM-DD value.
const dateLength = len("2006-01-02")

// FormatZip trims a zip code and hyphenates it when longer than 5 characters.
// Shorter values are stored as-is.
func FormatZip(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > 5 {
		return string(r[:5]) + "-" + string(r[5:])
	}
	return string(r)
}

// FormatPhone renders the three raw phone segments as +1 (AAA) BBB-CCCC.
// Segments are inserted verbatim; the digits are not validated.
func FormatPhone(area, prefix, line string) string {
	return "+1 (" + area + ") " + prefix + "-" + line
}

// FormatLicenseNumber joins the raw license number segments with hyphens.
func FormatLicenseNumber(segments ...string) string {
	return strings.Join(segments, "-")
}

// FormatDate assembles YYYY-MM-DD from raw month, day and year segments.
// Returns nil when the trimmed assembly is shorter than a full date, which
// happens whenever a component is blank or missing.
func FormatDate(month, day, year string) *string {
	date := year + "-" + month + "-" + day
	if len([]rune(strings.TrimSpace(date))) < dateLength {
		return nil
	}
	return &date
}

// OptionalText trims s and returns nil when nothing remains.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParseLine extracts a LicenseRecord from one data line.
// Short lines are accepted; missing fields come back empty.
func ParseLine(s string) LicenseRecord {
	line := NewLine(s)

	segments := make([]string, len(LicenseNumberSegments))
	for i, seg := range LicenseNumberSegments {
		segments[i] = line.Slice(seg)
	}

	return LicenseRecord{
		LicenseNumber:  FormatLicenseNumber(segments...),
		LicenseName:    line.Text(LicenseName),
		BusinessName:   OptionalText(line.Slice(BusinessName)),
		PremiseStreet:  line.Text(PremiseStreet),
		PremiseCity:    line.Text(PremiseCity),
		PremiseState:   line.Text(PremiseState),
		PremiseZip:     FormatZip(line.Slice(PremiseZip)),
		MailingStreet:  line.Text(MailingStreet),
		MailingCity:    line.Text(MailingCity),
		MailingState:   line.Text(MailingState),
		MailingZip:     FormatZip(line.Slice(MailingZip)),
		VoiceTelephone: FormatPhone(line.Slice(PhoneArea), line.Slice(PhonePrefix), line.Slice(PhoneLine)),
		LoaIssueDate: FormatDate(
			line.Slice(LoaIssueMonth), line.Slice(LoaIssueDay), line.Slice(LoaIssueYear),
		),
		LoaExpirationDate: FormatDate(
			line.Slice(LoaExpirationMonth), line.Slice(LoaExpirationDay), line.Slice(LoaExpirationYear),
		),
	}
}
