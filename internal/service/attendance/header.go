package attendance

import (
	"strings"
	"unicode"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is the canonical meaning of a source column.
type Field string

const (
	FieldIgnore     Field = ""
	FieldMatricule  Field = "matricule"
	FieldName       Field = "name"
	FieldDepartment Field = "department"
	FieldDate       Field = "date"
	FieldIn         Field = "in"
	FieldOut        Field = "out"
	FieldHours      Field = "hours"
	FieldDelayMin   Field = "delayMin"
	FieldStatus     Field = "status"
	FieldTimestamp  Field = "timestamp"
	FieldES         Field = "es"
	FieldESCalc     Field = "esCalc"
	FieldNote       Field = "note"
	FieldOperation  Field = "operation"
)

// SynonymTable maps a normalized header spelling to its canonical field.
type SynonymTable map[string]Field

// DefaultSynonyms covers the legacy layout and the terminal-log layout headers.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		// Legacy layout
		"matricule": FieldMatricule, "id": FieldMatricule, "code": FieldMatricule, "employee id": FieldMatricule, "badge": FieldMatricule,
		"name": FieldName, "nom": FieldName, "full name": FieldName, "nom complet": FieldName,
		"department": FieldDepartment, "departement": FieldDepartment, "département": FieldDepartment, "service": FieldDepartment, "dept": FieldDepartment,
		"date": FieldDate, "jour": FieldDate,
		"in": FieldIn, "check in": FieldIn, "check-in": FieldIn, "arrivée": FieldIn,
		"out": FieldOut, "check out": FieldOut, "check-out": FieldOut, "départ": FieldOut,
		"hours": FieldHours, "heures": FieldHours,
		"delay": FieldDelayMin, "retard": FieldDelayMin, "retard(min)": FieldDelayMin, "retard (min)": FieldDelayMin,
		"status": FieldStatus, "statut": FieldStatus,

		// Terminal-log layout
		"matricule.":    FieldMatricule,
		"nom.":          FieldName,
		"temps.":        FieldTimestamp,
		"temps":         FieldTimestamp,
		"horodatage":    FieldTimestamp,
		"timestamp":     FieldTimestamp,
		"e/s.":          FieldES,
		"e/s":           FieldES,
		"e/s calculée.": FieldESCalc,
		"e/s calculée":  FieldESCalc,
		"note.":         FieldNote,
		"note":          FieldNote,
		"opération.":    FieldOperation,
		"opération":     FieldOperation,
	}
}

// HeaderResolver maps arbitrary header spellings to canonical fields.
type HeaderResolver struct {
	exact  map[string]Field
	folded map[string]Field
}

func NewHeaderResolver(synonyms SynonymTable) *HeaderResolver {
	r := &HeaderResolver{
		exact:  make(map[string]Field, len(synonyms)),
		folded: make(map[string]Field, len(synonyms)),
	}
	for spelling, field := range synonyms {
		key := normalizeHeader(spelling)
		r.exact[key] = field
		r.folded[foldAccents(key)] = field
	}
	return r
}

// Resolve returns one slot per header cell; unknown headers resolve to FieldIgnore.
func (r *HeaderResolver) Resolve(header []tabular.Cell) HeaderMap {
	m := make(HeaderMap, len(header))
	for i, cell := range header {
		m[i] = r.lookup(normalizeHeader(cell.String()))
	}
	return m
}

func (r *HeaderResolver) lookup(key string) Field {
	if key == "" {
		return FieldIgnore
	}
	candidates := []string{key}
	if trimmed := strings.TrimRight(key, ".: "); trimmed != key && trimmed != "" {
		candidates = append(candidates, trimmed)
	}
	for _, c := range candidates {
		if f, ok := r.exact[c]; ok {
			return f
		}
		if f, ok := r.folded[foldAccents(c)]; ok {
			return f
		}
	}
	return FieldIgnore
}

// normalizeHeader lower-cases, trims and collapses internal whitespace.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// HeaderMap is the positional field assignment of a header row.
type HeaderMap []Field

func (m HeaderMap) Has(f Field) bool {
	for _, field := range m {
		if field == f {
			return true
		}
	}
	return false
}

// Layout selects the terminal-log layout when any punch column is present.
func (m HeaderMap) Layout() attendance.Layout {
	if m.Has(FieldTimestamp) || m.Has(FieldES) || m.Has(FieldESCalc) {
		return attendance.LayoutTerminalLog
	}
	return attendance.LayoutLegacy
}

// CheckRequired enforces the matricule column and a date or timestamp column.
func (m HeaderMap) CheckRequired() error {
	if !m.Has(FieldMatricule) || (!m.Has(FieldDate) && !m.Has(FieldTimestamp)) {
		return attendance.ErrRequiredHeadersMissing
	}
	return nil
}
