package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
)

const insertRecord = `
	INSERT INTO attendance_records (
		id, batch_id, matricule, name, department, date, first_in, last_out,
		hours, delay_min, status, credit, is_holiday_worked, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		batch_id = excluded.batch_id,
		name = excluded.name,
		department = excluded.department,
		first_in = excluded.first_in,
		last_out = excluded.last_out,
		hours = excluded.hours,
		delay_min = excluded.delay_min,
		status = excluded.status,
		credit = excluded.credit,
		is_holiday_worked = excluded.is_holiday_worked,
		created_at = excluded.created_at
`

type recordRepository struct {
	db *sql.DB
}

// ReplaceAll implements attendance.RecordRepository.
func (r *recordRepository) ReplaceAll(ctx context.Context, records []attendance.Record) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
			return fmt.Errorf("failed to clear attendance records: %w", err)
		}
		return insertAll(ctx, tx, records)
	})
}

// Upsert implements attendance.RecordRepository.
func (r *recordRepository) Upsert(ctx context.Context, records []attendance.Record) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertAll(ctx, tx, records)
	})
}

// List implements attendance.RecordRepository.
func (r *recordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	where := "1 = 1"
	args := []any{}

	if filter.Matricule != nil && *filter.Matricule != "" {
		where += " AND matricule = ?"
		args = append(args, *filter.Matricule)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		where += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		where += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Status != nil && *filter.Status != "" {
		where += " AND status = ?"
		args = append(args, *filter.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := `
		SELECT id, batch_id, matricule, name, department, date, first_in, last_out,
			   hours, delay_min, status, credit, is_holiday_worked, created_at
		FROM attendance_records
		WHERE ` + where + `
		ORDER BY date, matricule
		LIMIT ? OFFSET ?
	`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		var firstIn, lastOut sql.NullString
		var status, createdAt string
		var credit float64
		if err := rows.Scan(
			&rec.ID, &rec.BatchID, &rec.Matricule, &rec.Name, &rec.Department, &rec.Date, &firstIn, &lastOut,
			&rec.Hours, &rec.DelayMin, &status, &credit, &rec.IsHolidayWorked, &createdAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		if firstIn.Valid {
			rec.FirstIn = &firstIn.String
		}
		if lastOut.Valid {
			rec.LastOut = &lastOut.String
		}
		rec.Status = attendance.Status(status)
		rec.Credit = attendance.Credit(credit)
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse created_at of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

func (r *recordRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.BatchID, rec.Matricule, rec.Name, rec.Department, rec.Date, rec.FirstIn, rec.LastOut,
			rec.Hours, rec.DelayMin, string(rec.Status), float64(rec.Credit), rec.IsHolidayWorked,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to insert attendance record %s: %w", rec.ID, err)
		}
	}
	return nil
}

func NewRecordRepository(db *sql.DB) attendance.RecordRepository {
	return &recordRepository{db: db}
}
