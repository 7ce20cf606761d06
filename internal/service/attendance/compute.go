package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Rules are the schedule and day-count rules applied to every employee-day.
type Rules struct {
	// ScheduledStart is the HH:mm delay is measured from
	ScheduledStart string
	// LateGraceMinutes of delay still count as Present
	LateGraceMinutes int
	// FullDayHours worked earn a full credit, anything less a half credit
	FullDayHours float64
	// RestDay is never a working day
	RestDay time.Weekday
	// SecondaryRestDay is a working day only for employees who work it
	SecondaryRestDay time.Weekday
}

func DefaultRules() Rules {
	return Rules{
		ScheduledStart:   "08:00",
		LateGraceMinutes: 10,
		FullDayHours:     4,
		RestDay:          time.Sunday,
		SecondaryRestDay: time.Saturday,
	}
}

func (r Rules) Validate() error {
	if !validator.IsValidClock(r.ScheduledStart) {
		return fmt.Errorf("scheduled start %q must be in HH:mm format", r.ScheduledStart)
	}
	if r.LateGraceMinutes < 0 {
		return fmt.Errorf("late grace minutes must not be negative")
	}
	if r.FullDayHours <= 0 {
		return fmt.Errorf("full day hours must be positive")
	}
	return nil
}

// compute derives the record of one employee-day from its punch summary.
func (r Rules) compute(g *attendanceGroup, s punchSummary, emp employee.Employee, calendar holiday.Calendar) attendance.Record {
	record := attendance.Record{
		ID:         attendance.RecordID(g.matricule, g.date),
		Matricule:  g.matricule,
		Date:       g.date,
		Name:       firstNonEmpty(emp.Name, s.name),
		Department: firstNonEmpty(emp.Department, s.dept, "N/A"),
		Status:     attendance.StatusAbsent,
		Credit:     attendance.CreditNone,
	}
	if record.Name == "nan" {
		record.Name = ""
	}

	if s.firstIn != "" {
		firstIn := s.firstIn
		record.FirstIn = &firstIn
	}
	if s.lastOut != "" {
		lastOut := s.lastOut
		record.LastOut = &lastOut
	}

	record.Hours = r.workedHours(s)
	record.DelayMin = r.delay(s)

	_, isHoliday := calendar.Label(g.date)
	isWorkingDay := r.isWorkingDay(g.date, emp.WorksSaturday)

	switch {
	case record.Hours > 0:
		record.Status = attendance.StatusPresent
		if record.DelayMin > r.LateGraceMinutes {
			record.Status = attendance.StatusLate
		}
		record.Credit = attendance.CreditHalf
		if record.Hours >= r.FullDayHours {
			record.Credit = attendance.CreditFull
		}
		record.IsHolidayWorked = isHoliday
	case isHoliday:
		record.Status = attendance.StatusHoliday
	case isWorkingDay:
		record.Status = attendance.StatusAbsent
	default:
		// rest days are reported under the holiday status
		record.Status = attendance.StatusHoliday
	}

	return record
}

// workedHours is lastOut - firstIn on the same day, else the precomputed hours.
func (r Rules) workedHours(s punchSummary) float64 {
	if s.firstIn != "" && s.lastOut != "" {
		in, okIn := clockMinutes(s.firstIn)
		out, okOut := clockMinutes(s.lastOut)
		if !okIn || !okOut || out <= in {
			return 0
		}
		return round2(decimal.NewFromInt(int64(out - in)).Div(decimal.NewFromInt(60)))
	}
	if s.hours != nil && *s.hours > 0 {
		return round2(decimal.NewFromFloat(*s.hours))
	}
	return 0
}

func (r Rules) delay(s punchSummary) int {
	if s.firstIn != "" {
		in, okIn := clockMinutes(s.firstIn)
		start, okStart := clockMinutes(r.ScheduledStart)
		if !okIn || !okStart {
			return 0
		}
		return max(0, in-start)
	}
	if s.delayMin != nil {
		return max(0, *s.delayMin)
	}
	return 0
}

func (r Rules) isWorkingDay(date string, worksSaturday bool) bool {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	switch t.Weekday() {
	case r.RestDay:
		return false
	case r.SecondaryRestDay:
		return worksSaturday
	}
	return true
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
