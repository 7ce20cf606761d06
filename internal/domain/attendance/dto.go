package attendance

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/validator"
)

// MaxImportSize bounds an uploaded export.
const MaxImportSize = 20 << 20

// ImportMode selects how processed records reach the store.
type ImportMode string

const (
	// ModeOverwrite replaces the whole attendance store with the batch.
	ModeOverwrite ImportMode = "overwrite"
	// ModeMerge upserts the batch by record ID and leaves other records untouched.
	ModeMerge ImportMode = "merge"
)

// ImportedRow is one non-blank source line after header mapping and value decoding.
type ImportedRow struct {
	Line          int       `json:"line"`
	Errors        []string  `json:"errors"`
	Matricule     string    `json:"matricule,omitempty"`
	Name          string    `json:"name,omitempty"`
	Department    string    `json:"department,omitempty"`
	Date          string    `json:"date,omitempty"`
	PunchTime     string    `json:"punch_time,omitempty"`
	DirectionCode string    `json:"direction_code,omitempty"`
	Direction     Direction `json:"direction,omitempty"`
	In            string    `json:"in,omitempty"`
	Out           string    `json:"out,omitempty"`
	Hours         *float64  `json:"hours,omitempty"`
	DelayMin      *int      `json:"delay_min,omitempty"`
	Status        string    `json:"status,omitempty"`
	Note          string    `json:"note,omitempty"`
	Operation     string    `json:"operation,omitempty"`

	// Raw holds the trimmed source text of each mapped column, keyed by field name
	Raw map[string]string `json:"raw,omitempty"`
}

// Valid reports whether the row decoded without structural errors.
func (r *ImportedRow) Valid() bool {
	return len(r.Errors) == 0
}

// AddError annotates the row with a diagnostic.
func (r *ImportedRow) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// UnmatchedRow is a row that could not become part of a Record.
type UnmatchedRow struct {
	Row     *ImportedRow `json:"row"`
	Reasons []string     `json:"reasons"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ImportStats struct {
	Total     int      `json:"total"`
	Matched   int      `json:"matched"`
	Unmatched int      `json:"unmatched"`
	Period    Period   `json:"period"`
	Warnings  []string `json:"warnings"`
}

type ImportResult struct {
	BatchID          string         `json:"batch_id"`
	Layout           Layout         `json:"layout,omitempty"`
	Rows             []*ImportedRow `json:"rows"`
	ProcessedRecords []Record       `json:"processed_records"`
	UnmatchedRows    []UnmatchedRow `json:"unmatched_rows"`
	Errors           []string       `json:"errors"`
	Stats            ImportStats    `json:"stats"`
}

// UnmatchedImportedRows returns the rows behind the unmatched entries, in order.
func (r ImportResult) UnmatchedImportedRows() []*ImportedRow {
	rows := make([]*ImportedRow, 0, len(r.UnmatchedRows))
	for _, u := range r.UnmatchedRows {
		rows = append(rows, u.Row)
	}
	return rows
}

// ImportRequest carries an uploaded time-clock export.
type ImportRequest struct {
	Filename string     `json:"filename"`
	Size     int64      `json:"size"`
	Mode     ImportMode `json:"mode"`
	File     io.Reader  `json:"-"`
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Filename) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "time-clock export file is required",
		})
	} else {
		ext := strings.ToLower(filepath.Ext(r.Filename))
		if !validator.IsInSlice(ext, []string{".xlsx", ".xlsm", ".xltx", ".csv", ".tsv", ".txt"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "file",
				Message: ErrUnsupportedFile.Error(),
			})
		}
	}

	if r.Size > MaxImportSize {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: ErrFileTooLarge.Error(),
		})
	}

	if r.Mode == "" {
		r.Mode = ModeOverwrite
	}
	if r.Mode != ModeOverwrite && r.Mode != ModeMerge {
		errs = append(errs, validator.ValidationError{
			Field:   "mode",
			Message: ErrInvalidMode.Error(),
		})
	}

	if r.File == nil && len(errs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "time-clock export file is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordFilter struct {
	Matricule *string `json:"matricule,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 500",
		})
	}

	if f.Status != nil {
		validStatuses := []string{string(StatusPresent), string(StatusLate), string(StatusAbsent), string(StatusHoliday)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: Present, Late, Absent, Holiday",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListRecordResponse struct {
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
	Records    []Record `json:"records"`
}

// ImportEvent announces a persisted import to live subscribers.
type ImportEvent struct {
	Event     string      `json:"event"`
	BatchID   string      `json:"batch_id"`
	Filename  string      `json:"filename"`
	Mode      ImportMode  `json:"mode"`
	Stats     ImportStats `json:"stats"`
	Timestamp time.Time   `json:"timestamp"`
}

const EventImportCompleted = "import.completed"
