package attendance

import "errors"

var (
	// Precondition errors abort an import before any row is processed
	ErrEmptyFile              = errors.New("File is empty or has no data rows.")
	ErrRequiredHeadersMissing = errors.New("Required headers not found. Must have 'Matricule' and either 'Date' or 'Temps.'.")

	ErrUnsupportedFile = errors.New("unsupported file type: only xlsx, xlsm, csv, tsv, txt allowed")
	ErrFileTooLarge    = errors.New("import file size must not exceed 20MB")
	ErrInvalidMode     = errors.New("import mode must be one of: overwrite, merge")
	ErrNothingToExport = errors.New("no unmatched rows to export")
)
