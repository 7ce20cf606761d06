package attendance

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timeclock/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() employee.Directory {
	return employee.NewDirectory([]employee.Employee{
		{Matricule: "E1", Name: "Awa Diallo", Department: "Ops"},
		{Matricule: "E2", Name: "Jean Kouassi", Department: "Logistics", WorksSaturday: true},
	})
}

func testCalendar() holiday.Calendar {
	return holiday.NewCalendar([]holiday.Holiday{{Date: "2025-05-01", Label: "Fête du Travail"}})
}

func sheetOf(rows ...[]string) tabular.Sheet {
	sheet := tabular.Sheet{Rows: make([][]tabular.Cell, len(rows))}
	for i, r := range rows {
		sheet.Rows[i] = tabular.Texts(r...)
	}
	return sheet
}

func findRecord(t *testing.T, result attendance.ImportResult, matricule, date string) attendance.Record {
	t.Helper()
	for _, r := range result.ProcessedRecords {
		if r.Matricule == matricule && r.Date == date {
			return r
		}
	}
	require.Failf(t, "record not found", "%s on %s", matricule, date)
	return attendance.Record{}
}

func TestImporter_Import_LegacyLateFullDay(t *testing.T) {
	// Arrange
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"E1", "2025-01-06", "08:15", "17:00"},
	)

	// Act
	result, err := im.Import(sheet, testDirectory(), testCalendar())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, attendance.LayoutLegacy, result.Layout)
	require.Len(t, result.ProcessedRecords, 1)
	record := result.ProcessedRecords[0]
	assert.Equal(t, "E1|2025-01-06", record.ID)
	assert.Equal(t, 8.75, record.Hours)
	assert.Equal(t, 15, record.DelayMin)
	assert.Equal(t, attendance.StatusLate, record.Status)
	assert.Equal(t, attendance.CreditFull, record.Credit)
	assert.False(t, record.IsHolidayWorked)
	assert.Equal(t, "Awa Diallo", record.Name)
	require.NotNil(t, record.FirstIn)
	assert.Equal(t, "08:15", *record.FirstIn)
}

func TestImporter_Import_TerminalLogPunches(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule.", "Nom.", "Temps.", "E/S."},
		[]string{"E1", "Awa", "06/01/2025 17:10", "Sortie"},
		[]string{"E1", "Awa", "06/01/2025 08:05", "Entrée"},
		[]string{"E1", "Awa", "06/01/2025 12:30", "S"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	assert.Equal(t, attendance.LayoutTerminalLog, result.Layout)
	require.Len(t, result.ProcessedRecords, 1)
	record := result.ProcessedRecords[0]
	require.NotNil(t, record.FirstIn)
	require.NotNil(t, record.LastOut)
	assert.Equal(t, "08:05", *record.FirstIn)
	assert.Equal(t, "17:10", *record.LastOut)
	assert.Equal(t, 9.08, record.Hours)
	assert.Equal(t, 5, record.DelayMin)
	assert.Equal(t, attendance.StatusPresent, record.Status)
	assert.Equal(t, attendance.CreditFull, record.Credit)

	assert.Equal(t, attendance.DirectionOut, result.Rows[0].Direction)
	assert.Equal(t, attendance.DirectionIn, result.Rows[1].Direction)
}

func TestImporter_Import_UnknownMatricule(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"E9", "2025-01-06", "08:00", "17:00"},
		[]string{"E1", "2025-01-06", "08:00", "17:00"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	require.Len(t, result.UnmatchedRows, 1)
	unmatched := result.UnmatchedRows[0]
	assert.Equal(t, "E9", unmatched.Row.Matricule)
	require.Len(t, unmatched.Reasons, 1)
	assert.Contains(t, unmatched.Reasons[0], "not found")
	assert.Equal(t, "Matricule 'E9' not found in employee database.", unmatched.Reasons[0])

	for _, r := range result.ProcessedRecords {
		assert.NotEqual(t, "E9", r.Matricule)
	}
	assert.Equal(t, 1, result.Stats.Matched)
	assert.Equal(t, 1, result.Stats.Unmatched)
}

func TestImporter_Import_SaturdayRestDay(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"E1", "2025-01-11", "", ""},
		[]string{"E2", "2025-01-11", "", ""},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	rest := findRecord(t, result, "E1", "2025-01-11")
	assert.Equal(t, attendance.StatusHoliday, rest.Status)
	assert.Equal(t, attendance.CreditNone, rest.Credit)
	assert.Zero(t, rest.Hours)

	worker := findRecord(t, result, "E2", "2025-01-11")
	assert.Equal(t, attendance.StatusAbsent, worker.Status)
}

func TestImporter_Import_HolidayWorked(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"E1", "01/05/2025", "08:30", "12:30"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	record := findRecord(t, result, "E1", "2025-05-01")
	assert.Equal(t, attendance.StatusLate, record.Status)
	assert.True(t, record.IsHolidayWorked)
	assert.Equal(t, attendance.CreditFull, record.Credit)
}

func TestImporter_Import_OneRecordPerKey(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule.", "Temps.", "E/S."},
		[]string{"E1", "06/01/2025 08:00", "E"},
		[]string{"E1", "06/01/2025 12:00", "S"},
		[]string{"E1", "06/01/2025 13:00", "E"},
		[]string{"E1", "06/01/2025 17:00", "S"},
		[]string{"E2", "06/01/2025 09:00", "E"},
		[]string{"E1", "07/01/2025 08:00", "E"},
		[]string{"E2", "07/01/2025 08:00", "E"},
		[]string{"E2", "07/01/2025 16:00", "S"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	assert.Len(t, result.ProcessedRecords, 4)
	assert.Equal(t, 8, result.Stats.Total)
	assert.Equal(t, 4, result.Stats.Matched)

	// sorted by date then matricule
	var keys []string
	for _, r := range result.ProcessedRecords {
		keys = append(keys, r.ID)
	}
	assert.Equal(t, []string{"E1|2025-01-06", "E2|2025-01-06", "E1|2025-01-07", "E2|2025-01-07"}, keys)

	assert.Equal(t, 9.0, findRecord(t, result, "E1", "2025-01-06").Hours)
	// a lone in-punch yields no hours
	assert.Equal(t, attendance.StatusAbsent, findRecord(t, result, "E2", "2025-01-06").Status)
}

func TestImporter_Import_BlankMatricule(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"", "2025-01-06", "08:00", "17:00"},
		[]string{"E1", "not a date", "08:00", "17:00"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	assert.Empty(t, result.ProcessedRecords)
	require.Len(t, result.UnmatchedRows, 2)
	assert.Equal(t, []string{errMissingMatricule}, result.UnmatchedRows[0].Reasons)
	assert.Equal(t, []string{errInvalidDate}, result.UnmatchedRows[1].Reasons)
	assert.Len(t, result.Rows, 2)
}

func TestImporter_Import_SkipsBlankAndSoftDeletedRows(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule.", "Temps.", "E/S.", "Note."},
		[]string{"", "", "", ""},
		[]string{"E1", "06/01/2025 08:00", "E", "invalid"},
		[]string{"E1", "06/01/2025 09:00", "E", ""},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 4, result.Rows[0].Line)
	assert.Equal(t, 1, result.Stats.Total)
	assert.Equal(t, 60, findRecord(t, result, "E1", "2025-01-06").DelayMin)
}

func TestImporter_Import_UnknownDirectionWarning(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule.", "Temps.", "E/S."},
		[]string{"E1", "06/01/2025 08:00", "E"},
		[]string{"E1", "06/01/2025 10:00", "Pause"},
		[]string{"E1", "06/01/2025 11:00", "pause"},
		[]string{"E1", "06/01/2025 17:00", "S"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	assert.Equal(t, 9.0, findRecord(t, result, "E1", "2025-01-06").Hours)
	assert.Equal(t, []string{`Unrecognized punch direction "pause" ignored on 2 row(s)`}, result.Stats.Warnings)
	assert.Equal(t, attendance.DirectionUnknown, result.Rows[1].Direction)
}

func TestImporter_Import_CustomClassifierAndRules(t *testing.T) {
	classifier := NewPunchClassifier([]string{"1"}, []string{"0"})
	rules := DefaultRules()
	rules.ScheduledStart = "09:00"
	im := NewImporter(ImporterOptions{Classifier: &classifier, Rules: &rules})
	sheet := sheetOf(
		[]string{"Matricule.", "Temps.", "E/S."},
		[]string{"E1", "2025-01-06 09:20", "1"},
		[]string{"E1", "2025-01-06 12:00", "0"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	record := findRecord(t, result, "E1", "2025-01-06")
	assert.Equal(t, 20, record.DelayMin)
	assert.Equal(t, attendance.StatusLate, record.Status)
	assert.Equal(t, attendance.CreditHalf, record.Credit)
}

func TestImporter_Import_Period(t *testing.T) {
	im := NewImporter(ImporterOptions{})

	result, err := im.Import(sheetOf(
		[]string{"Matricule", "Date"},
		[]string{"E1", "2025-01-08"},
		[]string{"E9", "2025-01-03"},
		[]string{"E1", "2025-01-06"},
	), testDirectory(), testCalendar())
	require.NoError(t, err)
	assert.Equal(t, attendance.Period{Start: "2025-01-03", End: "2025-01-08"}, result.Stats.Period)

	result, err = im.Import(sheetOf(
		[]string{"Matricule", "Date"},
		[]string{"", "bad"},
	), testDirectory(), testCalendar())
	require.NoError(t, err)
	assert.Equal(t, attendance.Period{Start: "N/A", End: "N/A"}, result.Stats.Period)
	assert.NotNil(t, result.Stats.Warnings)
}

func TestImporter_Import_Preconditions(t *testing.T) {
	im := NewImporter(ImporterOptions{})

	tests := []struct {
		name    string
		sheet   tabular.Sheet
		wantErr error
	}{
		{"no rows", tabular.Sheet{}, attendance.ErrEmptyFile},
		{"header only", sheetOf([]string{"Matricule", "Date"}), attendance.ErrEmptyFile},
		{"missing required headers", sheetOf([]string{"Name", "In"}, []string{"Awa", "08:00"}), attendance.ErrRequiredHeadersMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := im.Import(tt.sheet, testDirectory(), testCalendar())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.wantErr.Error()}, result.Errors)
			assert.Empty(t, result.Rows)
			assert.Empty(t, result.ProcessedRecords)
		})
	}
}

func TestImporter_Import_CorrectedExportRoundTrip(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	first, err := im.Import(sheetOf(
		[]string{"Matricule.", "Temps.", "E/S."},
		[]string{"E9", "06/01/2025 08:05", "Entrée"},
		[]string{"E9", "06/01/2025 17:10", "Sortie"},
		[]string{"E1", "07/01/2025 08:00", "E"},
	), testDirectory(), testCalendar())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tabular.WriteCSV(&buf, BuildCorrectedExport(first.Rows)))
	sheet, err := tabular.ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)

	second, err := im.Import(sheet, testDirectory(), testCalendar())
	require.NoError(t, err)

	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Matricule, second.Rows[i].Matricule)
		assert.Equal(t, first.Rows[i].Date, second.Rows[i].Date)
		assert.Equal(t, first.Rows[i].PunchTime, second.Rows[i].PunchTime)
	}
	assert.Equal(t, first.Stats.Unmatched, second.Stats.Unmatched)
}

func TestImporter_Import_CorrectedLegacyExportKeepsLayout(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	first, err := im.Import(sheetOf(
		[]string{"Matricule", "Date", "In", "Out"},
		[]string{"E9", "06/01/2025", "08:00", "17:00"},
	), testDirectory(), testCalendar())
	require.NoError(t, err)
	require.Equal(t, attendance.LayoutLegacy, first.Layout)

	var buf bytes.Buffer
	require.NoError(t, tabular.WriteCSV(&buf, BuildCorrectedExport(first.Rows)))
	sheet, err := tabular.ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)

	second, err := im.Import(sheet, testDirectory(), testCalendar())
	require.NoError(t, err)

	assert.Equal(t, attendance.LayoutLegacy, second.Layout)
	require.Len(t, second.Rows, 1)
	assert.Equal(t, "2025-01-06", second.Rows[0].Date)
	assert.Equal(t, "17:00", second.Rows[0].Out)
}

func TestImporter_Import_PlaceholderOutStillProducesRecord(t *testing.T) {
	im := NewImporter(ImporterOptions{})
	sheet := sheetOf(
		[]string{"Matricule", "Date", "In", "Out", "Hours"},
		[]string{"E1", "2025-01-06", "08:00", "-", ""},
		[]string{"E1", "2025-01-07", "", "", "8:30"},
	)

	result, err := im.Import(sheet, testDirectory(), testCalendar())

	require.NoError(t, err)
	assert.Empty(t, result.UnmatchedRows)
	require.Len(t, result.ProcessedRecords, 2)
	open := findRecord(t, result, "E1", "2025-01-06")
	require.NotNil(t, open.FirstIn)
	assert.Equal(t, "08:00", *open.FirstIn)
	assert.Equal(t, 0.0, open.Hours)
	assert.Equal(t, 8.5, findRecord(t, result, "E1", "2025-01-07").Hours)
}

func TestImporter_Import_ForcedDate1904(t *testing.T) {
	sheet := tabular.Sheet{Rows: [][]tabular.Cell{
		tabular.Texts("Matricule", "Date", "In", "Out"),
		{tabular.Text("E1"), tabular.Number(44201), tabular.Text("08:00"), tabular.Text("12:00")},
	}}

	legacy, err := NewImporter(ImporterOptions{}).Import(sheet, testDirectory(), testCalendar())
	require.NoError(t, err)
	forced, err := NewImporter(ImporterOptions{Date1904: true}).Import(sheet, testDirectory(), testCalendar())
	require.NoError(t, err)

	require.Len(t, legacy.ProcessedRecords, 1)
	require.Len(t, forced.ProcessedRecords, 1)
	assert.Equal(t, "2021-01-05", legacy.ProcessedRecords[0].Date)
	assert.Equal(t, "2025-01-06", forced.ProcessedRecords[0].Date)
}
