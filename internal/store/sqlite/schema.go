package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates the entries table on a fresh database.
// Unlike an IF NOT EXISTS migration it fails on a database that already has
// the table, since every run builds a new file.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE entries (
    uid                 INTEGER UNIQUE,
    license_number      TEXT NOT NULL UNIQUE,
    license_name        TEXT NOT NULL,
    business_name       TEXT,
    premise_street      TEXT NOT NULL,
    premise_city        TEXT NOT NULL,
    premise_state       TEXT NOT NULL,
    premise_zip         TEXT NOT NULL,
    mailing_street      TEXT NOT NULL,
    mailing_city        TEXT NOT NULL,
    mailing_state       TEXT NOT NULL,
    mailing_zip         TEXT NOT NULL,
    voice_telephone     TEXT NOT NULL,
    loa_issue_date      TEXT,
    loa_expiration_date TEXT,
    PRIMARY KEY(uid AUTOINCREMENT)
);
`
