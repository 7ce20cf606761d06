package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	matricule      TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	department     TEXT NOT NULL DEFAULT '',
	works_saturday INTEGER NOT NULL DEFAULT 0,
	active         INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS holidays (
	date  TEXT PRIMARY KEY,
	label TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance_records (
	id                TEXT PRIMARY KEY,
	batch_id          TEXT NOT NULL,
	matricule         TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	department        TEXT NOT NULL DEFAULT '',
	date              TEXT NOT NULL,
	first_in          TEXT,
	last_out          TEXT,
	hours             REAL NOT NULL DEFAULT 0,
	delay_min         INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	credit            REAL NOT NULL DEFAULT 0,
	is_holiday_worked INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attendance_records_date ON attendance_records (date, matricule);
`

// Migrate creates the tables the import service needs.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
