package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

// ListDirectory implements employee.EmployeeRepository.
func (r *employeeRepository) ListDirectory(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT matricule, name, department, works_saturday
		FROM employees
		WHERE active = TRUE
		ORDER BY matricule
	`

	rows, err := q.Query(ctx, query)
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

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}
