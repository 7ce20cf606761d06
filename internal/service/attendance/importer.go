package attendance

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
)

const periodUnknown = "N/A"

// ImporterOptions configures the pipeline. Zero values fall back to the defaults.
type ImporterOptions struct {
	Synonyms   SynonymTable
	Classifier *PunchClassifier
	Rules      *Rules
	// Date1904 forces the 1904 serial epoch for sources that cannot declare it, such as CSV
	Date1904 bool
}

// Importer reconciles a raw time-clock table into attendance records. It holds only
// immutable configuration and is safe for concurrent use.
type Importer struct {
	resolver   *HeaderResolver
	classifier PunchClassifier
	rules      Rules
	date1904   bool
}

func NewImporter(opts ImporterOptions) *Importer {
	synonyms := opts.Synonyms
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	classifier := DefaultPunchClassifier()
	if opts.Classifier != nil {
		classifier = *opts.Classifier
	}
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	return &Importer{
		resolver:   NewHeaderResolver(synonyms),
		classifier: classifier,
		rules:      rules,
		date1904:   opts.Date1904,
	}
}

// Import runs the whole pipeline on a sheet whose first row holds the headers. Row-level
// problems are reported in the result; only the precondition failures (empty file,
// missing required headers) are returned as errors, before any row is processed.
func (im *Importer) Import(sheet tabular.Sheet, directory employee.Directory, calendar holiday.Calendar) (attendance.ImportResult, error) {
	if len(sheet.Rows) < 2 {
		return failedResult(attendance.ErrEmptyFile), attendance.ErrEmptyFile
	}

	headers := im.resolver.Resolve(sheet.Rows[0])
	if err := headers.CheckRequired(); err != nil {
		return failedResult(err), err
	}

	normalizer := rowNormalizer{headers: headers, decoder: Decoder{Date1904: sheet.Date1904 || im.date1904}}
	rows := make([]*attendance.ImportedRow, 0, len(sheet.Rows)-1)
	unmatched := []attendance.UnmatchedRow{}
	var period dateRange

	for i := 1; i < len(sheet.Rows); i++ {
		raw := sheet.Rows[i]
		if tabular.IsBlankRow(raw) {
			continue
		}
		row, skip := normalizer.normalize(i+1, raw)
		if skip {
			continue
		}
		rows = append(rows, row)
		if row.Date != "" {
			period.observe(row.Date)
		}
		if !row.Valid() {
			unmatched = append(unmatched, attendance.UnmatchedRow{Row: row, Reasons: append([]string(nil), row.Errors...)})
		}
	}

	records := []attendance.Record{}
	unknownTokens := make(map[string]int)

	for _, g := range groupRows(rows) {
		summary, unknown := im.classifier.summarize(g)
		for _, token := range unknown {
			unknownTokens[token]++
		}

		emp, ok := directory.Lookup(g.matricule)
		if !ok {
			reason := fmt.Sprintf("Matricule '%s' not found in employee database.", g.matricule)
			for _, r := range g.rows {
				r.AddError(reason)
				unmatched = append(unmatched, attendance.UnmatchedRow{Row: r, Reasons: []string{reason}})
			}
			continue
		}

		records = append(records, im.rules.compute(g, summary, emp, calendar))
	}

	sort.SliceStable(unmatched, func(i, j int) bool { return unmatched[i].Row.Line < unmatched[j].Row.Line })
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].Matricule < records[j].Matricule
	})

	return attendance.ImportResult{
		Layout:           headers.Layout(),
		Rows:             rows,
		ProcessedRecords: records,
		UnmatchedRows:    unmatched,
		Errors:           []string{},
		Stats: attendance.ImportStats{
			Total:     len(rows),
			Matched:   len(records),
			Unmatched: len(unmatched),
			Period:    period.toPeriod(),
			Warnings:  directionWarnings(unknownTokens),
		},
	}, nil
}

func failedResult(err error) attendance.ImportResult {
	return attendance.ImportResult{
		Rows:             []*attendance.ImportedRow{},
		ProcessedRecords: []attendance.Record{},
		UnmatchedRows:    []attendance.UnmatchedRow{},
		Errors:           []string{err.Error()},
		Stats: attendance.ImportStats{
			Period:   attendance.Period{Start: periodUnknown, End: periodUnknown},
			Warnings: []string{},
		},
	}
}

func directionWarnings(tokens map[string]int) []string {
	warnings := []string{}
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(blank)"
		}
		warnings = append(warnings, fmt.Sprintf("Unrecognized punch direction %q ignored on %d row(s)", label, tokens[k]))
	}
	return warnings
}

type dateRange struct {
	start, end string
}

func (r *dateRange) observe(date string) {
	if r.start == "" || date < r.start {
		r.start = date
	}
	if r.end == "" || date > r.end {
		r.end = date
	}
}

func (r dateRange) toPeriod() attendance.Period {
	if r.start == "" {
		return attendance.Period{Start: periodUnknown, End: periodUnknown}
	}
	return attendance.Period{Start: r.start, End: r.end}
}
