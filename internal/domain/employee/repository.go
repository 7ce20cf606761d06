package employee

import "context"

type EmployeeRepository interface {
	// ListDirectory returns every active employee with the fields used by attendance imports
	ListDirectory(ctx context.Context) ([]Employee, error)
}
