package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
)

type employeeRepository struct {
	db *sql.DB
}

// ListDirectory implements employee.EmployeeRepository.
func (r *employeeRepository) ListDirectory(ctx context.Context) ([]employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT matricule, name, department, works_saturday
		FROM employees
		WHERE active = 1
		ORDER BY matricule
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.Matricule, &e.Name, &e.Department, &e.WorksSaturday); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func NewEmployeeRepository(db *sql.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

type holidayRepository struct {
	db *sql.DB
}

// List implements holiday.HolidayRepository.
func (r *holidayRepository) List(ctx context.Context) ([]holiday.Holiday, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, label FROM holidays ORDER BY date`)
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

// Save implements holiday.HolidayRepository.
func (r *holidayRepository) Save(ctx context.Context, holidays []holiday.Holiday) error {
	for _, h := range holidays {
		if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO holidays (date, label) VALUES (?, ?)`, h.Date, h.Label); err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h.Date, err)
		}
	}
	return nil
}

func NewHolidayRepository(db *sql.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}
