package employee

// Employee is the directory view the attendance import needs.
type Employee struct {
	Matricule     string
	Name          string
	Department    string
	WorksSaturday bool
}

// Directory is a point-in-time snapshot of the employee master data keyed by matricule.
type Directory struct {
	byMatricule map[string]Employee
}

func NewDirectory(employees []Employee) Directory {
	d := Directory{byMatricule: make(map[string]Employee, len(employees))}
	for _, e := range employees {
		d.byMatricule[e.Matricule] = e
	}
	return d
}

// Lookup resolves a matricule by exact match.
func (d Directory) Lookup(matricule string) (Employee, bool) {
	e, ok := d.byMatricule[matricule]
	return e, ok
}

func (d Directory) Len() int {
	return len(d.byMatricule)
}
