package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var ErrUnsupportedFormat = errors.New("unsupported file type: only xlsx, xlsm, csv, tsv, txt allowed")

// Format is a tabular file encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet is the first worksheet (or the whole delimited file) as raw cells.
type Sheet struct {
	Name     string
	Rows     [][]Cell
	Date1904 bool
}

// FormatFromFilename picks the reader for a file by its extension.
func FormatFromFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatXLSX, nil
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

// Read decodes r according to the extension of filename.
func Read(r io.Reader, filename string) (Sheet, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return Sheet{}, err
	}
	if format == FormatXLSX {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

// ReadXLSX reads the first worksheet of a workbook. Cells keep their raw value so that
// date cells arrive as day serials and are decoded by the caller, not by the workbook's
// display format.
func ReadXLSX(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return Sheet{}, fmt.Errorf("workbook has no sheets")
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	sheet := Sheet{Name: name, Rows: make([][]Cell, len(raw))}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sheet.Date1904 = *props.Date1904
	}

	for i, values := range raw {
		row := make([]Cell, len(values))
		for j, v := range values {
			if v == "" {
				row[j] = Empty()
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return Sheet{}, err
			}
			cellType, err := f.GetCellType(name, axis)
			if err != nil {
				return Sheet{}, fmt.Errorf("failed to read cell %s: %w", axis, err)
			}
			row[j] = xlsxCell(cellType, v)
		}
		sheet.Rows[i] = row
	}

	return sheet, nil
}

func xlsxCell(cellType excelize.CellType, v string) Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return Text(v)
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return Number(n)
	}
	return Text(v)
}

// ReadCSV reads delimited text. The delimiter is sniffed from the header line and
// input that is not valid UTF-8 is decoded as Windows-1252, which is what most
// badge terminals emit.
func ReadCSV(r io.Reader) (Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		data, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return Sheet{}, fmt.Errorf("failed to decode file: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to parse delimited file: %w", err)
	}

	sheet := Sheet{Rows: make([][]Cell, len(records))}
	for i, record := range records {
		sheet.Rows[i] = Texts(record...)
	}
	return sheet, nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
