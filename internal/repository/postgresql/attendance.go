package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

var recordColumns = []string{
	"id", "batch_id", "matricule", "name", "department", "date", "first_in", "last_out",
	"hours", "delay_min", "status", "credit", "is_holiday_worked", "created_at",
}

type recordRepository struct {
	db *database.DB
}

// ReplaceAll implements attendance.RecordRepository.
func (r *recordRepository) ReplaceAll(ctx context.Context, records []attendance.Record) error {
	rows, err := copyRows(records)
	if err != nil {
		return err
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attendance_records`); err != nil {
			return fmt.Errorf("failed to clear attendance records: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"attendance_records"}, recordColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to copy attendance records: %w", err)
		}
		return nil
	})
}

// Upsert implements attendance.RecordRepository.
func (r *recordRepository) Upsert(ctx context.Context, records []attendance.Record) error {
	rows, err := copyRows(records)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO attendance_records (
			id, batch_id, matricule, name, department, date, first_in, last_out,
			hours, delay_min, status, credit, is_holiday_worked, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			batch_id = EXCLUDED.batch_id,
			name = EXCLUDED.name,
			department = EXCLUDED.department,
			first_in = EXCLUDED.first_in,
			last_out = EXCLUDED.last_out,
			hours = EXCLUDED.hours,
			delay_min = EXCLUDED.delay_min,
			status = EXCLUDED.status,
			credit = EXCLUDED.credit,
			is_holiday_worked = EXCLUDED.is_holiday_worked,
			created_at = EXCLUDED.created_at
	`

	return WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(query, row...)
		}
		results := tx.SendBatch(ctx, batch)
		for i := range rows {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert attendance record %s: %w", records[i].ID, err)
			}
		}
		return results.Close()
	})
}

// List implements attendance.RecordRepository.
func (r *recordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.Matricule != nil && *filter.Matricule != "" {
		where += fmt.Sprintf(" AND matricule = $%d", argIdx)
		args = append(args, *filter.Matricule)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		date, err := parseDate(*filter.StartDate)
		if err != nil {
			return nil, 0, err
		}
		where += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, date)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		date, err := parseDate(*filter.EndDate)
		if err != nil {
			return nil, 0, err
		}
		where += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, date)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_records WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, batch_id, matricule, name, department, date::text, first_in, last_out,
			   hours::float8, delay_min, status, credit::float8, is_holiday_worked, created_at
		FROM attendance_records
		WHERE %s
		ORDER BY date, matricule
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		var status string
		var credit float64
		if err := rows.Scan(
			&rec.ID, &rec.BatchID, &rec.Matricule, &rec.Name, &rec.Department, &rec.Date, &rec.FirstIn, &rec.LastOut,
			&rec.Hours, &rec.DelayMin, &status, &credit, &rec.IsHolidayWorked, &rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		rec.Status = attendance.Status(status)
		rec.Credit = attendance.Credit(credit)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

func copyRows(records []attendance.Record) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		date, err := parseDate(rec.Date)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []any{
			rec.ID, rec.BatchID, rec.Matricule, rec.Name, rec.Department, date, rec.FirstIn, rec.LastOut,
			rec.Hours, rec.DelayMin, string(rec.Status), float64(rec.Credit), rec.IsHolidayWorked, rec.CreatedAt,
		})
	}
	return rows, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepository{db: db}
}
