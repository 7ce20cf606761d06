package tabular

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindNumber
	KindText
	KindTime
)

// Cell is a raw spreadsheet value. Exactly one of Number, Text or Time is meaningful,
// selected by Kind.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
	Time   time.Time
}

func Empty() Cell           { return Cell{Kind: KindEmpty} }
func Number(v float64) Cell { return Cell{Kind: KindNumber, Number: v} }
func Time(t time.Time) Cell { return Cell{Kind: KindTime, Time: t} }
func Text(s string) Cell    { return Cell{Kind: KindText, Text: s} }

// IsBlank reports whether the cell carries no value. Whitespace-only text is blank.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		return strings.TrimSpace(c.Text) == ""
	case KindTime:
		return c.Time.IsZero()
	}
	return false
}

// String renders the cell the way a spreadsheet shows it in a text column.
// Whole numbers print without a decimal part so numeric matricules keep their form.
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindText:
		return c.Text
	case KindTime:
		return c.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Texts wraps a row of strings as text cells. Empty strings become empty cells.
func Texts(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = Empty()
			continue
		}
		row[i] = Text(v)
	}
	return row
}

// IsBlankRow reports whether every cell of the row is blank.
func IsBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
