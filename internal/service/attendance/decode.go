package attendance

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	secondsPerDay = 86400
	// Largest serial a spreadsheet accepts (9999-12-31).
	maxSerial = 2958465
)

var (
	epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

	dayFirstPattern = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})(?:[ T]+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*(?i:(AM|PM)))?)?$`)
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::\d{2})?(?:\s*(?i:(AM|PM))\b)?`)

	// Tried in order after the day-first pattern. Month-first text is never guessed.
	fallbackLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"2006/01/02 15:04",
		"2006/01/02 15:04:05",
	}
)

// Decoder converts raw cells into canonical dates (YYYY-MM-DD) and times of day (HH:mm).
// Date1904 selects the 1904 day-serial epoch used by some workbooks.
type Decoder struct {
	Date1904 bool
}

// DecodeDate returns the canonical date of a cell.
func (d Decoder) DecodeDate(c tabular.Cell) (string, bool) {
	t, _, ok := d.instant(c)
	if !ok {
		return "", false
	}
	return t.Format(dateLayout), true
}

// DecodeTimeOfDay returns the HH:mm carried by a cell. A cell with no time component
// (a zero fraction, a bare midnight instant) yields false without being an error; use
// IsInvalidTime to tell garbage text apart.
func (d Decoder) DecodeTimeOfDay(c tabular.Cell) (string, bool) {
	switch c.Kind {
	case tabular.KindNumber:
		if c.Number < 0 || math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return "", false
		}
		secs := fractionSeconds(c.Number)
		if secs == 0 {
			return "", false
		}
		return formatClock(secs/3600, (secs%3600)/60), true
	case tabular.KindTime:
		if !hasClock(c.Time) {
			return "", false
		}
		return c.Time.Format(clockLayout), true
	case tabular.KindText:
		m := clockPattern.FindStringSubmatch(c.Text)
		if m == nil {
			return "", false
		}
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		h, ok := to24Hour(h, m[3])
		if !ok || h > 23 || minute > 59 {
			return "", false
		}
		return formatClock(h, minute), true
	}
	return "", false
}

// IsInvalidTime reports text that is present but carries no readable time of day.
func (d Decoder) IsInvalidTime(c tabular.Cell) bool {
	if c.Kind != tabular.KindText || c.IsBlank() {
		return false
	}
	_, ok := d.DecodeTimeOfDay(c)
	return !ok
}

// DecodeTimestamp splits a combined date-time cell. An instant at exactly midnight is
// date-only and clock is empty, so no punch is registered for it.
func (d Decoder) DecodeTimestamp(c tabular.Cell) (date, clock string, ok bool) {
	t, withClock, ok := d.instant(c)
	if !ok {
		return "", "", false
	}
	date = t.Format(dateLayout)
	if withClock && hasClock(t) {
		clock = t.Format(clockLayout)
	}
	return date, clock, true
}

// instant decodes any date-bearing cell. withClock is false when the source had no
// time part at all.
func (d Decoder) instant(c tabular.Cell) (t time.Time, withClock bool, ok bool) {
	switch c.Kind {
	case tabular.KindNumber:
		return d.serialToTime(c.Number)
	case tabular.KindTime:
		if c.Time.IsZero() {
			return time.Time{}, false, false
		}
		return c.Time, true, true
	case tabular.KindText:
		return d.parseText(strings.TrimSpace(c.Text))
	}
	return time.Time{}, false, false
}

func (d Decoder) serialToTime(v float64) (time.Time, bool, bool) {
	if v < 1 || v > maxSerial || math.IsNaN(v) {
		return time.Time{}, false, false
	}
	days := math.Floor(v)
	secs := fractionSeconds(v)
	if secs == 0 && v-days > 0.5 {
		// fraction rounded up to the next midnight
		days++
	}

	epoch := epoch1900
	if d.Date1904 {
		epoch = epoch1904
	} else if days < 60 {
		// serials before the phantom 1900-02-29 count from one day later
		epoch = epoch1900.AddDate(0, 0, 1)
	}

	t := epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
	return t, true, true
}

func (d Decoder) parseText(s string) (time.Time, bool, bool) {
	if s == "" {
		return time.Time{}, false, false
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		var h, minute, sec int
		withClock := m[4] != ""
		if withClock {
			h, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
			if m[6] != "" {
				sec, _ = strconv.Atoi(m[6])
			}
			var ok bool
			if h, ok = to24Hour(h, m[7]); !ok || h > 23 || minute > 59 || sec > 59 {
				return time.Time{}, false, false
			}
		}
		t := time.Date(year, time.Month(month), day, h, minute, sec, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, false, false
		}
		return t, withClock, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, len(layout) > len(dateLayout), true
		}
	}

	// serials exported as plain text by delimited dumps
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return d.serialToTime(v)
	}

	return time.Time{}, false, false
}

// fractionSeconds rounds the time-of-day part of a day serial to whole seconds.
func fractionSeconds(v float64) int {
	frac := v - math.Floor(v)
	secs := int(math.Round(frac * secondsPerDay))
	if secs >= secondsPerDay {
		return 0
	}
	return secs
}

// to24Hour applies an AM/PM suffix. A suffixed hour must be 1 to 12.
func to24Hour(h int, meridiem string) (int, bool) {
	if meridiem == "" {
		return h, true
	}
	if h < 1 || h > 12 {
		return 0, false
	}
	h %= 12
	if strings.EqualFold(meridiem, "PM") {
		h += 12
	}
	return h, true
}

func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
}

func formatClock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}

// clockMinutes converts HH:mm to minutes since midnight.
func clockMinutes(clock string) (int, bool) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
