package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		matricule      TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		department     TEXT NOT NULL DEFAULT '',
		works_saturday BOOLEAN NOT NULL DEFAULT FALSE,
		active         BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS holidays (
		date  DATE PRIMARY KEY,
		label TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id                TEXT PRIMARY KEY,
		batch_id          TEXT NOT NULL,
		matricule         TEXT NOT NULL,
		name              TEXT NOT NULL DEFAULT '',
		department        TEXT NOT NULL DEFAULT '',
		date              DATE NOT NULL,
		first_in          TEXT,
		last_out          TEXT,
		hours             NUMERIC(6,2) NOT NULL DEFAULT 0,
		delay_min         INTEGER NOT NULL DEFAULT 0,
		status            TEXT NOT NULL,
		credit            NUMERIC(3,1) NOT NULL DEFAULT 0,
		is_holiday_worked BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_records_date ON attendance_records (date, matricule)`,
}

// Migrate creates the tables the import service needs.
func Migrate(ctx context.Context, db *database.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
