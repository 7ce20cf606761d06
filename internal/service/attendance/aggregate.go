package attendance

import (
	"sort"
	"strings"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
)

var (
	defaultInTokens  = []string{"c/in", "e", "entrée", "entree", "in"}
	defaultOutTokens = []string{"c/out", "s", "sortie", "out"}
)

// PunchClassifier maps terminal direction codes to in/out.
type PunchClassifier struct {
	in  map[string]struct{}
	out map[string]struct{}
}

func NewPunchClassifier(inTokens, outTokens []string) PunchClassifier {
	c := PunchClassifier{in: make(map[string]struct{}), out: make(map[string]struct{})}
	for _, t := range inTokens {
		c.in[normalizeToken(t)] = struct{}{}
	}
	for _, t := range outTokens {
		c.out[normalizeToken(t)] = struct{}{}
	}
	return c
}

func DefaultPunchClassifier() PunchClassifier {
	return NewPunchClassifier(defaultInTokens, defaultOutTokens)
}

func (c PunchClassifier) Classify(code string) attendance.Direction {
	token := normalizeToken(code)
	if _, ok := c.in[token]; ok {
		return attendance.DirectionIn
	}
	if _, ok := c.out[token]; ok {
		return attendance.DirectionOut
	}
	return attendance.DirectionUnknown
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// attendanceGroup holds the rows of one employee-day.
type attendanceGroup struct {
	matricule string
	date      string
	rows      []*attendance.ImportedRow
}

// groupRows keys structurally valid rows by matricule|date, keeping first-seen order.
func groupRows(rows []*attendance.ImportedRow) []*attendanceGroup {
	index := make(map[string]*attendanceGroup)
	var groups []*attendanceGroup
	for _, r := range rows {
		if !r.Valid() || r.Matricule == "" || r.Date == "" {
			continue
		}
		key := attendance.RecordID(r.Matricule, r.Date)
		g, ok := index[key]
		if !ok {
			g = &attendanceGroup{matricule: r.Matricule, date: r.Date}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	return groups
}

// punchSummary is the first-in/last-out view of a group.
type punchSummary struct {
	firstIn  string
	lastOut  string
	hours    *float64
	delayMin *int
	name     string
	dept     string
}

// summarize classifies each punch of the group and keeps the earliest in and the
// latest out. Punches with an unrecognized direction count toward neither side and
// their tokens are returned.
func (c PunchClassifier) summarize(g *attendanceGroup) (punchSummary, []string) {
	var s punchSummary
	var ins, outs, unknown []string

	for _, r := range g.rows {
		if r.PunchTime != "" {
			r.Direction = c.Classify(r.DirectionCode)
			switch r.Direction {
			case attendance.DirectionIn:
				ins = append(ins, r.PunchTime)
			case attendance.DirectionOut:
				outs = append(outs, r.PunchTime)
			default:
				unknown = append(unknown, r.DirectionCode)
			}
		}
		if r.In != "" {
			ins = append(ins, r.In)
		}
		if r.Out != "" {
			outs = append(outs, r.Out)
		}
		if s.hours == nil && r.Hours != nil {
			s.hours = r.Hours
		}
		if s.delayMin == nil && r.DelayMin != nil {
			s.delayMin = r.DelayMin
		}
		if s.name == "" {
			s.name = r.Name
		}
		if s.dept == "" {
			s.dept = r.Department
		}
	}

	// HH:mm sorts chronologically as text
	sort.Strings(ins)
	sort.Strings(outs)
	if len(ins) > 0 {
		s.firstIn = ins[0]
	}
	if len(outs) > 0 {
		s.lastOut = outs[len(outs)-1]
	}
	return s, unknown
}
