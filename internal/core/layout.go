package core

// layout.go describes the FFLeZCheck fixed-width record layout.
//
// Every field occupies a fixed, unlabeled character range of the line. The
// ranges are kept here as data so a future layout revision only touches this
// table. Positions follow the published download file layout:
// https://fflezcheck.atf.gov/FFLEzCheck/downloadFileLayout.action

import "strings"

// FieldRange is a named half-open [Start, End) character range of a record line.
type FieldRange struct {
	Name  string
	Start int
	End   int
}

// Width returns the number of characters the field occupies.
func (f FieldRange) Width() int {
	return f.End - f.Start
}

// Record field ranges.
var (
	LicenseRegion   = FieldRange{Name: "license_region", Start: 0, End: 1}
	LicenseDistrict = FieldRange{Name: "license_district", Start: 1, End: 3}
	LicenseCounty   = FieldRange{Name: "license_county", Start: 3, End: 6}
	LicenseType     = FieldRange{Name: "license_type", Start: 6, End: 8}
	LicenseExpiry   = FieldRange{Name: "license_expiry", Start: 8, End: 10}
	LicenseSequence = FieldRange{Name: "license_sequence", Start: 10, End: 15}

	LicenseName  = FieldRange{Name: "license_name", Start: 15, End: 65}
	BusinessName = FieldRange{Name: "business_name", Start: 65, End: 115}

	PremiseStreet = FieldRange{Name: "premise_street", Start: 115, End: 165}
	PremiseCity   = FieldRange{Name: "premise_city", Start: 165, End: 195}
	PremiseState  = FieldRange{Name: "premise_state", Start: 195, End: 197}
	PremiseZip    = FieldRange{Name: "premise_zip", Start: 197, End: 206}

	MailingStreet = FieldRange{Name: "mailing_street", Start: 206, End: 256}
	MailingCity   = FieldRange{Name: "mailing_city", Start: 256, End: 286}
	MailingState  = FieldRange{Name: "mailing_state", Start: 286, End: 288}
	MailingZip    = FieldRange{Name: "mailing_zip", Start: 288, End: 297}

	PhoneArea   = FieldRange{Name: "phone_area", Start: 297, End: 300}
	PhonePrefix = FieldRange{Name: "phone_prefix", Start: 300, End: 303}
	PhoneLine   = FieldRange{Name: "phone_line", Start: 303, End: 307}

	LoaIssueMonth = FieldRange{Name: "loa_issue_month", Start: 307, End: 309}
	LoaIssueDay   = FieldRange{Name: "loa_issue_day", Start: 309, End: 311}
	LoaIssueYear  = FieldRange{Name: "loa_issue_year", Start: 311, End: 315}

	LoaExpirationMonth = FieldRange{Name: "loa_expiration_month", Start: 315, End: 317}
	LoaExpirationDay   = FieldRange{Name: "loa_expiration_day", Start: 317, End: 319}
	LoaExpirationYear  = FieldRange{Name: "loa_expiration_year", Start: 319, End: 323}
)

// LicenseNumberSegments are the six ranges joined with hyphens to build the license number.
var LicenseNumberSegments = []FieldRange{
	LicenseRegion,
	LicenseDistrict,
	LicenseCounty,
	LicenseType,
	LicenseExpiry,
	LicenseSequence,
}

// Layout lists every range of a record in line order.
var Layout = []FieldRange{
	LicenseRegion, LicenseDistrict, LicenseCounty, LicenseType, LicenseExpiry, LicenseSequence,
	LicenseName, BusinessName,
	PremiseStreet, PremiseCity, PremiseState, PremiseZip,
	MailingStreet, MailingCity, MailingState, MailingZip,
	PhoneArea, PhonePrefix, PhoneLine,
	LoaIssueMonth, LoaIssueDay, LoaIssueYear,
	LoaExpirationMonth, LoaExpirationDay, LoaExpirationYear,
}

// RecordWidth is the character width of a complete record line.
var RecordWidth = layoutWidth()

func layoutWidth() int {
	width := 0
	for _, f := range Layout {
		width += f.Width()
	}
	return width
}

// Line is a decoded record line addressed by character position.
type Line []rune

// NewLine decodes s for character-offset slicing.
func NewLine(s string) Line {
	return Line(s)
}

// Slice returns the raw text of the field. Ranges past the end of a short
// line are clamped, so a missing field is "" rather than an error.
func (l Line) Slice(f FieldRange) string {
	start, end := f.Start, f.End
	if start > len(l) {
		start = len(l)
	}
	if end > len(l) {
		end = len(l)
	}
	if start >= end {
		return ""
	}
	return string(l[start:end])
}

// Text returns the field with surrounding whitespace removed.
func (l Line) Text(f FieldRange) string {
	return strings.TrimSpace(l.Slice(f))
}
