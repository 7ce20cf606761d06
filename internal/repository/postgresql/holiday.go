package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

// List implements holiday.HolidayRepository.
func (r *holidayRepository) List(ctx context.Context) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT date::text, label FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.Date, &h.Label); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}

// Save inserts holidays, keeping existing labels for dates already stored.
func (r *holidayRepository) Save(ctx context.Context, holidays []holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	for _, h := range holidays {
		date, err := parseDate(h.Date)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `INSERT INTO holidays (date, label) VALUES ($1, $2) ON CONFLICT (date) DO NOTHING`, date, h.Label); err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h.Date, err)
		}
	}
	return nil
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}
