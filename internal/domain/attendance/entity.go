package attendance

import "time"

type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
	StatusAbsent  Status = "Absent"
	StatusHoliday Status = "Holiday"
)

// Credit is the fraction of a work day a record counts for in day-count reports.
type Credit float64

const (
	CreditNone Credit = 0
	CreditHalf Credit = 0.5
	CreditFull Credit = 1
)

// Layout is the column layout detected in a time-clock export.
type Layout string

const (
	LayoutLegacy      Layout = "legacy"
	LayoutTerminalLog Layout = "terminal_log"
)

// Direction is the clock-in/clock-out meaning of a punch.
type Direction string

const (
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
	DirectionUnknown Direction = "unknown"
)

// Record is one employee-day of attendance. Name and Department are copied from the
// employee directory when the record is computed and are not kept in sync afterwards.
type Record struct {
	ID              string    `json:"id"`
	BatchID         string    `json:"batch_id"`
	Matricule       string    `json:"matricule"`
	Name            string    `json:"name"`
	Department      string    `json:"department"`
	Date            string    `json:"date"`
	FirstIn         *string   `json:"first_in"`
	LastOut         *string   `json:"last_out"`
	Hours           float64   `json:"hours"`
	DelayMin        int       `json:"delay_min"`
	Status          Status    `json:"status"`
	Credit          Credit    `json:"credit"`
	IsHolidayWorked bool      `json:"is_holiday_worked"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordID builds the identity of a record from its key.
func RecordID(matricule, date string) string {
	return matricule + "|" + date
}
