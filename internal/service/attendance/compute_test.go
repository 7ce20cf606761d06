package attendance

import (
	"math/rand"
	"testing"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestRules_Compute(t *testing.T) {
	rules := DefaultRules()
	calendar := holiday.NewCalendar([]holiday.Holiday{{Date: "2025-05-01", Label: "Fête du Travail"}})
	emp := employee.Employee{Matricule: "E1", Name: "Awa Diallo", Department: "Ops"}

	tests := []struct {
		name    string
		date    string
		summary punchSummary
		emp     employee.Employee
		want    attendance.Record
	}{
		{
			name:    "late with full day",
			date:    "2025-01-06",
			summary: punchSummary{firstIn: "08:15", lastOut: "17:00"},
			emp:     emp,
			want: attendance.Record{
				Hours: 8.75, DelayMin: 15, Status: attendance.StatusLate, Credit: attendance.CreditFull,
			},
		},
		{
			name:    "within grace",
			date:    "2025-01-06",
			summary: punchSummary{firstIn: "08:10", lastOut: "11:10"},
			emp:     emp,
			want: attendance.Record{
				Hours: 3, DelayMin: 10, Status: attendance.StatusPresent, Credit: attendance.CreditHalf,
			},
		},
		{
			name:    "out before in",
			date:    "2025-01-06",
			summary: punchSummary{firstIn: "18:00", lastOut: "07:00", hours: ptr(9.0)},
			emp:     emp,
			want: attendance.Record{
				Hours: 0, DelayMin: 600, Status: attendance.StatusAbsent, Credit: attendance.CreditNone,
			},
		},
		{
			name:    "precomputed hours and delay",
			date:    "2025-01-07",
			summary: punchSummary{hours: ptr(4.0), delayMin: ptr(12)},
			emp:     emp,
			want: attendance.Record{
				Hours: 4, DelayMin: 12, Status: attendance.StatusLate, Credit: attendance.CreditFull,
			},
		},
		{
			name:    "absent on working day",
			date:    "2025-01-08",
			summary: punchSummary{},
			emp:     emp,
			want:    attendance.Record{Status: attendance.StatusAbsent},
		},
		{
			name:    "saturday rest day",
			date:    "2025-01-11",
			summary: punchSummary{},
			emp:     emp,
			want:    attendance.Record{Status: attendance.StatusHoliday},
		},
		{
			name:    "saturday worker absent",
			date:    "2025-01-11",
			summary: punchSummary{},
			emp:     employee.Employee{Matricule: "E1", WorksSaturday: true},
			want:    attendance.Record{Status: attendance.StatusAbsent},
		},
		{
			name:    "sunday",
			date:    "2025-01-12",
			summary: punchSummary{},
			emp:     employee.Employee{Matricule: "E1", WorksSaturday: true},
			want:    attendance.Record{Status: attendance.StatusHoliday},
		},
		{
			name:    "holiday without punches",
			date:    "2025-05-01",
			summary: punchSummary{},
			emp:     emp,
			want:    attendance.Record{Status: attendance.StatusHoliday},
		},
		{
			name:    "holiday worked",
			date:    "2025-05-01",
			summary: punchSummary{firstIn: "08:00", lastOut: "12:00"},
			emp:     emp,
			want: attendance.Record{
				Hours: 4, Status: attendance.StatusPresent, Credit: attendance.CreditFull, IsHolidayWorked: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &attendanceGroup{matricule: tt.emp.Matricule, date: tt.date}
			got := rules.compute(g, tt.summary, tt.emp, calendar)

			assert.Equal(t, attendance.RecordID(tt.emp.Matricule, tt.date), got.ID)
			assert.Equal(t, tt.want.Hours, got.Hours)
			assert.Equal(t, tt.want.DelayMin, got.DelayMin)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Credit, got.Credit)
			assert.Equal(t, tt.want.IsHolidayWorked, got.IsHolidayWorked)
		})
	}
}

func TestRules_Compute_NameAndDepartment(t *testing.T) {
	rules := DefaultRules()
	g := &attendanceGroup{matricule: "E2", date: "2025-01-06"}

	got := rules.compute(g, punchSummary{name: "nan"}, employee.Employee{Matricule: "E2"}, holiday.Calendar{})
	assert.Empty(t, got.Name)
	assert.Equal(t, "N/A", got.Department)

	got = rules.compute(g, punchSummary{name: "From File", dept: "Night"}, employee.Employee{Matricule: "E2", Name: "Directory Name"}, holiday.Calendar{})
	assert.Equal(t, "Directory Name", got.Name)
	assert.Equal(t, "Night", got.Department)
}

func TestRules_Compute_CreditIffHours(t *testing.T) {
	rules := DefaultRules()
	rng := rand.New(rand.NewSource(42))
	emp := employee.Employee{Matricule: "E1"}
	dates := []string{"2025-01-06", "2025-01-11", "2025-01-12"}

	for i := 0; i < 2000; i++ {
		var s punchSummary
		switch rng.Intn(3) {
		case 0:
			s.firstIn = formatClock(rng.Intn(24), rng.Intn(60))
			s.lastOut = formatClock(rng.Intn(24), rng.Intn(60))
		case 1:
			s.hours = ptr(rng.Float64() * 12)
			s.delayMin = ptr(rng.Intn(120))
		}

		g := &attendanceGroup{matricule: "E1", date: dates[rng.Intn(len(dates))]}
		got := rules.compute(g, s, emp, holiday.Calendar{})

		if (got.Credit > 0) != (got.Hours > 0) {
			t.Fatalf("credit %v with hours %v for %+v", got.Credit, got.Hours, s)
		}
		assert.GreaterOrEqual(t, got.DelayMin, 0)
	}
}

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	r := DefaultRules()
	r.ScheduledStart = "8am"
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.ScheduledStart = "24:00"
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.ScheduledStart = "07:45"
	assert.NoError(t, r.Validate())

	r = DefaultRules()
	r.FullDayHours = 0
	assert.Error(t, r.Validate())
}
