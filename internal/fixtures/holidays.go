package fixtures

import (
	"fmt"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
)

// ==========================================
// DEFAULT HOLIDAY CALENDAR
// ==========================================

// fixedHolidays recur on the same month-day every year
var fixedHolidays = []struct {
	MonthDay string
	Label    string
}{
	{"01-01", "New Year's Day"},
	{"05-01", "Labour Day"},
	{"07-30", "Throne Day"},
}

// DefaultHolidayYears are the years seeded into an empty calendar
var DefaultHolidayYears = []int{2025, 2026}

// DefaultHolidays expands the fixed holidays over the given years, or over
// DefaultHolidayYears when none are given.
func DefaultHolidays(years ...int) []holiday.Holiday {
	if len(years) == 0 {
		years = DefaultHolidayYears
	}
	holidays := make([]holiday.Holiday, 0, len(years)*len(fixedHolidays))
	for _, y := range years {
		for _, h := range fixedHolidays {
			holidays = append(holidays, holiday.Holiday{
				Date:  fmt.Sprintf("%04d-%s", y, h.MonthDay),
				Label: h.Label,
			})
		}
	}
	return holidays
}
