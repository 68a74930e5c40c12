package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

// LoadOptions configures descriptor table loading.
type LoadOptions struct {
	// SkipRows is the number of leading metadata rows to discard before
	// the header row.
	SkipRows int
	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	// Ignored for delimited files.
	Sheet string
	// Comma is the field delimiter for delimited files. Zero means ','.
	Comma rune
}

// ErrParse indicates a cell that could not be parsed as a number.
type ErrParse struct {
	Row    int
	Column string
	Value  string
	cause  error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("table: row %d column %q: cannot parse %q", e.Row, e.Column, e.Value)
}

func (e *ErrParse) Unwrap() error { return e.cause }

// Load reads a descriptor table from path. The format is chosen by
// extension: .xlsx is read as a spreadsheet, everything else as a
// delimited text file, transparently gunzipped when the name ends in
// .gz. The first non-skipped row is the header of descriptor names.
func Load(path string, optFns ...func(*LoadOptions)) (*Table, error) {
	opts := LoadOptions{Comma: ','}
	for _, fn := range optFns {
		fn(&opts)
	}

	var records [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readXLSX(path, opts.Sheet)
	} else {
		records, err = readDelimited(path, opts.Comma)
	}
	if err != nil {
		return nil, err
	}

	if opts.SkipRows >= len(records) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, path)
	}
	records = records[opts.SkipRows:]

	return fromRecords(records)
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("table: %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1 // Length checked by fromRecords with context.
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	return records, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("table: %s: no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("table: %s sheet %q: %w", path, sheet, err)
	}
	return rows, nil
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) < 2 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(name)
	}

	rows := len(records) - 1
	cols := make([][]float64, len(names))
	for i := range cols {
		cols[i] = make([]float64, rows)
	}

	for r, record := range records[1:] {
		if len(record) != len(names) {
			return nil, fmt.Errorf("table: row %d has %d fields, want %d", r+1, len(record), len(names))
		}
		for c, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, &ErrParse{Row: r + 1, Column: names[c], Value: cell, cause: err}
			}
			cols[c][r] = v
		}
	}

	return New(names, cols)
}
