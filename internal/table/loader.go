package table

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
)

// ErrUnsupportedFormat is returned for files that are not CSV or Excel
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DataFormatError reports content that could not be parsed as a table
type DataFormatError struct {
	Filename string
	Cause    string
	Err      error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error reading %s: %s: %v", e.Filename, e.Cause, e.Err)
	}
	return fmt.Sprintf("error reading %s: %s", e.Filename, e.Cause)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// Format identifies how an upload is parsed
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatExcel Format = "xlsx"
)

// DetectFormat maps a filename to its format by extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm", ".xls":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load parses an uploaded buffer into a Table
func Load(filename string, data []byte) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DataFormatError{Filename: filename, Cause: "file is empty"}
	}

	var records [][]string
	switch format {
	case FormatCSV, FormatTSV:
		records, err = readDelimited(data, format)
	case FormatExcel:
		records, err = readWorkbook(data)
	}
	if err != nil {
		return nil, &DataFormatError{Filename: filename, Cause: "could not parse content", Err: err}
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &DataFormatError{Filename: filename, Cause: "no columns to parse from file"}
	}
	return FromRecords(records[0], records[1:]), nil
}

func readDelimited(data []byte, format Format) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid UTF-8")
	}

	r := csv.NewReader(bytes.NewReader(data))
	if format == FormatTSV {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	records := rows[:0]
	for i, row := range rows {
		if i > 0 && isBlankRecord(row) {
			continue
		}
		records = append(records, row)
	}
	return records, nil
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if cell != "" {
			return false
		}
	}
	return true
}

// FromRecords builds a typed table from a header and raw text rows. Short
// rows are padded with nulls; cells beyond the header get unnamed columns.
func FromRecords(header []string, rows [][]string) *Table {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := normalizeHeader(header, width)
	t := &Table{Columns: make([]*Column, width)}
	for j := 0; j < width; j++ {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		t.Columns[j] = inferColumn(names[j], raw)
	}
	return t
}

// normalizeHeader names blank headers "Unnamed: <i>" and suffixes repeated
// names with ".<n>"
func normalizeHeader(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]bool, width)
	suffix := make(map[string]int)
	for j := 0; j < width; j++ {
		name := ""
		if j < len(header) {
			name = header[j]
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(j)
		}
		if seen[name] {
			base := name
			for seen[name] {
				suffix[base]++
				name = base + "." + strconv.Itoa(suffix[base])
			}
		}
		seen[name] = true
		names[j] = name
	}
	return names
}
