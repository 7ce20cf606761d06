package attendance

import (
	"slices"
	"strconv"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
)

// Column is one fixed column of an exported table.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// CorrectionColumns re-export imported rows under headers the default synonym table
// resolves, so a corrected file imports again unchanged.
var CorrectionColumns = []Column[*attendance.ImportedRow]{
	{"Matricule", func(r *attendance.ImportedRow) string { return r.Matricule }},
	{"Name", func(r *attendance.ImportedRow) string { return r.Name }},
	{"Department", func(r *attendance.ImportedRow) string { return r.Department }},
	{"Date", func(r *attendance.ImportedRow) string { return orRaw(r, r.Date, FieldDate) }},
	{"In", func(r *attendance.ImportedRow) string { return orRaw(r, r.In, FieldIn) }},
	{"Out", func(r *attendance.ImportedRow) string { return orRaw(r, r.Out, FieldOut) }},
	{"Hours", func(r *attendance.ImportedRow) string {
		if r.Hours != nil {
			return strconv.FormatFloat(*r.Hours, 'f', -1, 64)
		}
		return r.Raw[string(FieldHours)]
	}},
	{"Delay", func(r *attendance.ImportedRow) string {
		if r.DelayMin != nil {
			return strconv.Itoa(*r.DelayMin)
		}
		return r.Raw[string(FieldDelayMin)]
	}},
	{"Status", func(r *attendance.ImportedRow) string { return r.Status }},
	{"Temps", func(r *attendance.ImportedRow) string {
		if r.Date != "" && r.PunchTime != "" {
			return r.Date + " " + r.PunchTime
		}
		return r.Raw[string(FieldTimestamp)]
	}},
	{"E/S", func(r *attendance.ImportedRow) string { return r.DirectionCode }},
	{"Note", func(r *attendance.ImportedRow) string { return r.Note }},
	{"Operation", func(r *attendance.ImportedRow) string { return r.Operation }},
}

// EmployeeExport is the flat employee shape of the employee re-export.
type EmployeeExport struct {
	Matricule  string
	FirstName  string
	LastName   string
	Department string
	Email      string
	Phone      string
	HireDate   string
	Status     string
}

var EmployeeExportColumns = []Column[EmployeeExport]{
	{"matricule", func(e EmployeeExport) string { return e.Matricule }},
	{"firstName", func(e EmployeeExport) string { return e.FirstName }},
	{"lastName", func(e EmployeeExport) string { return e.LastName }},
	{"department", func(e EmployeeExport) string { return e.Department }},
	{"email", func(e EmployeeExport) string { return e.Email }},
	{"phone", func(e EmployeeExport) string { return e.Phone }},
	{"hireDate", func(e EmployeeExport) string { return e.HireDate }},
	{"status", func(e EmployeeExport) string { return e.Status }},
}

// BuildTable renders items as a header row followed by one row per item.
func BuildTable[T any](columns []Column[T], items []T) [][]string {
	table := make([][]string, 0, len(items)+1)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	table = append(table, header)
	for _, item := range items {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.Value(item)
		}
		table = append(table, row)
	}
	return table
}

// punchHeaders are dropped from a corrected export when every row leaves them empty,
// so a legacy file keeps its layout when imported again.
var punchHeaders = []string{"Temps", "E/S"}

// BuildCorrectedExport renders imported rows for manual correction.
func BuildCorrectedExport(rows []*attendance.ImportedRow) [][]string {
	columns := CorrectionColumns
	if !hasPunches(rows) {
		columns = slices.DeleteFunc(slices.Clone(columns), func(c Column[*attendance.ImportedRow]) bool {
			return slices.Contains(punchHeaders, c.Header)
		})
	}
	return BuildTable(columns, rows)
}

func hasPunches(rows []*attendance.ImportedRow) bool {
	for _, c := range CorrectionColumns {
		if !slices.Contains(punchHeaders, c.Header) {
			continue
		}
		for _, r := range rows {
			if c.Value(r) != "" {
				return true
			}
		}
	}
	return false
}

// orRaw falls back to the source text when a value failed to decode.
func orRaw(r *attendance.ImportedRow, decoded string, f Field) string {
	if decoded != "" {
		return decoded
	}
	return r.Raw[string(f)]
}
