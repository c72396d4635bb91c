// Package core provides the business logic for FFLeZCheck conversions.
//
// It turns the fixed-width text export of the ATF Federal Firearms License
// listing into LicenseRecord values and writes them through a Store. It has
// no storage or transport dependencies: the SQLite and PostgreSQL stores
// live in internal/store, and the CLI and HTTP service drive it through
// internal/handler.
//
// # Record Layout
//
// Every field is a half-open character range listed in [Layout]. Lines
// shorter than [RecordWidth] are sliced leniently: a range past the end of
// the line yields "". Normalizers then shape the raw slices:
//
//   - license number: six raw segments joined with "-" ([FormatLicenseNumber])
//   - zip codes: hyphenated after five characters ([FormatZip])
//   - phone: "+1 (AAA) BBB-CCCC" from raw segments ([FormatPhone])
//   - LOA dates: "YYYY-MM-DD", or NULL when incomplete ([FormatDate])
//   - business name: NULL when blank ([OptionalText])
//
// # Conversion
//
// [Service.Convert] reads records with a [RecordReader] and inserts them in
// batches inside one transaction:
//
//  1. Begin the transaction on the Store
//  2. Skip exactly-empty lines, insert every other line
//  3. Commit, then compact the store if any rows were written
//
// Any failure rolls the transaction back. The returned [Result] tells the
// caller whether to keep the destination ([RunStatus.Retain]); Convert never
// deletes it.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB005: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE006: Input errors (size, encoding, missing file)
//   - CNV001-CNV004: Conversion errors (no entries, busy, cancelled, timeout)
package core
