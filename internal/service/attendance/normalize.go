package attendance

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
)

// softDeleteMarker in a note or operation cell drops the row before validation.
const softDeleteMarker = "invalid"

const (
	errMissingMatricule = "Missing matricule in row"
	errInvalidTimestamp = "Invalid 'Temps.' format"
	errInvalidDate      = "Invalid or missing date"
	errInvalidIn        = "Invalid 'In' time"
	errInvalidOut       = "Invalid 'Out' time"
	errInvalidHours     = "Invalid hours value"
	errInvalidDelay     = "Invalid delay value"
)

var durationPattern = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)

type rowNormalizer struct {
	headers HeaderMap
	decoder Decoder
}

// normalize maps one raw line. skip is true for soft-deleted rows.
func (n rowNormalizer) normalize(line int, raw []tabular.Cell) (row *attendance.ImportedRow, skip bool) {
	get := func(f Field) tabular.Cell {
		for i, field := range n.headers {
			if field == f && i < len(raw) && !isBlankCell(raw[i]) {
				return raw[i]
			}
		}
		return tabular.Empty()
	}
	text := func(f Field) string {
		return strings.TrimSpace(get(f).String())
	}

	note, operation := text(FieldNote), text(FieldOperation)
	if strings.EqualFold(note, softDeleteMarker) || strings.EqualFold(operation, softDeleteMarker) {
		return nil, true
	}

	row = &attendance.ImportedRow{
		Line:       line,
		Errors:     []string{},
		Matricule:  text(FieldMatricule),
		Name:       text(FieldName),
		Department: text(FieldDepartment),
		Status:     text(FieldStatus),
		Note:       note,
		Operation:  operation,
		Raw:        make(map[string]string),
	}
	for i, field := range n.headers {
		if field != FieldIgnore && i < len(raw) && !raw[i].IsBlank() {
			if _, seen := row.Raw[string(field)]; !seen {
				row.Raw[string(field)] = strings.TrimSpace(raw[i].String())
			}
		}
	}

	if row.Matricule == "" {
		row.AddError(errMissingMatricule)
		return row, false
	}

	if ts := get(FieldTimestamp); !ts.IsBlank() {
		date, clock, ok := n.decoder.DecodeTimestamp(ts)
		if ok {
			row.Date = date
		} else {
			row.AddError(errInvalidTimestamp)
		}
		if clock != "" {
			row.PunchTime = clock
			code := strings.ToLower(text(FieldES))
			if code == "" {
				code = strings.ToLower(text(FieldESCalc))
			}
			row.DirectionCode = code
		}
	} else {
		if date, ok := n.decoder.DecodeDate(get(FieldDate)); ok {
			row.Date = date
		} else {
			row.AddError(errInvalidDate)
		}
	}

	row.In = n.clock(row, get(FieldIn), errInvalidIn)
	row.Out = n.clock(row, get(FieldOut), errInvalidOut)

	if c := get(FieldHours); !c.IsBlank() {
		if v, ok := decodeHours(c); ok && v >= 0 {
			row.Hours = &v
		} else {
			row.AddError(errInvalidHours)
		}
	}
	if c := get(FieldDelayMin); !c.IsBlank() {
		if v, ok := decodeNumber(c); ok && v >= 0 {
			delay := int(math.Round(v))
			row.DelayMin = &delay
		} else {
			row.AddError(errInvalidDelay)
		}
	}

	return row, false
}

func (n rowNormalizer) clock(row *attendance.ImportedRow, c tabular.Cell, errMsg string) string {
	if c.IsBlank() {
		return ""
	}
	if clock, ok := n.decoder.DecodeTimeOfDay(c); ok {
		return clock
	}
	if n.decoder.IsInvalidTime(c) {
		row.AddError(errMsg)
	}
	return ""
}

// isBlankCell treats placeholder text such as "-" or "--:--", which carries neither
// letters nor digits, as an empty cell.
func isBlankCell(c tabular.Cell) bool {
	if c.IsBlank() {
		return true
	}
	if c.Kind != tabular.KindText {
		return false
	}
	return !strings.ContainsFunc(c.Text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// decodeHours reads a worked-hours cell as a number or an H:MM duration.
func decodeHours(c tabular.Cell) (float64, bool) {
	if c.Kind == tabular.KindText {
		if m := durationPattern.FindStringSubmatch(strings.TrimSpace(c.Text)); m != nil {
			h, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			return float64(h) + float64(minute)/60, true
		}
	}
	return decodeNumber(c)
}

// decodeNumber accepts numeric cells and text with either decimal separator.
func decodeNumber(c tabular.Cell) (float64, bool) {
	switch c.Kind {
	case tabular.KindNumber:
		return c.Number, !math.IsNaN(c.Number) && !math.IsInf(c.Number, 0)
	case tabular.KindText:
		s := strings.ReplaceAll(strings.TrimSpace(c.Text), ",", ".")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
