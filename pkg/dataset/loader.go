package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sentinel loader errors.
var (
	ErrEmptyFile     = errors.New("dataset has no header row")
	ErrMissingColumn = errors.New("required column missing")
	ErrBadScore      = errors.New("score is not a number")
	ErrDuplicateID   = errors.New("duplicate student id")
)

const (
	extXLSX  = ".xlsx"
	utf8BOM  = "\ufeff"
	noColumn = -1
)

// Load reads the dataset at path. Files ending in .xlsx are read as Excel
// workbooks; everything else is parsed as CSV with a header row.
func Load(path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), extXLSX) {
		return LoadXLSX(path)
	}

	return LoadCSV(path)
}

// LoadCSV reads a comma-separated file with a header row.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, path)
}

// ReadCSV parses CSV content from r. source is recorded on the dataset and
// used in error messages.
func ReadCSV(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	return fromRows(source, rows)
}

// layout maps header positions to the fields of a Record.
type layout struct {
	header   []string
	id       int
	subjects [3]int
}

func newLayout(header []string) (layout, error) {
	lay := layout{header: header, id: noColumn}

	for i := range lay.subjects {
		lay.subjects[i] = noColumn
	}

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		header[i] = name

		if name == IDColumn {
			lay.id = i

			continue
		}

		for _, s := range Subjects() {
			if name == s.Column() {
				lay.subjects[s] = i
			}
		}
	}

	for _, s := range Subjects() {
		if lay.subjects[s] == noColumn {
			return layout{}, fmt.Errorf("%w: %q", ErrMissingColumn, s.Column())
		}
	}

	return lay, nil
}

func (lay layout) isScore(col int) bool {
	for _, idx := range lay.subjects {
		if idx == col {
			return true
		}
	}

	return false
}

// fromRows converts a header row plus data rows into a Dataset, synthesizing
// Student_<n> identifiers when the header has no Student column.
func fromRows(source string, rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyFile)
	}

	lay, err := newLayout(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	records := make([]Record, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)

	for i, row := range rows[1:] {
		rec, recErr := lay.record(i, row)
		if recErr != nil {
			return nil, fmt.Errorf("%s: row %d: %w", source, i+2, recErr)
		}

		if prev, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%s: row %d: %w %q (first seen on row %d)", source, i+2, ErrDuplicateID, rec.ID, prev)
		}

		seen[rec.ID] = i + 2

		records = append(records, rec)
	}

	return New(source, records...), nil
}

func (lay layout) record(index int, row []string) (Record, error) {
	rec := Record{ID: idPrefix + strconv.Itoa(index+1)}

	if lay.id != noColumn {
		rec.ID = strings.TrimSpace(cell(row, lay.id))
	}

	for _, s := range Subjects() {
		raw := strings.TrimSpace(cell(row, lay.subjects[s]))

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, fmt.Errorf("%w: %s=%q", ErrBadScore, s.Column(), raw)
		}

		rec.setScore(s, v)
	}

	for col, name := range lay.header {
		if col == lay.id || lay.isScore(col) {
			continue
		}

		rec.Attrs = append(rec.Attrs, Attr{Name: name, Value: cell(row, col)})
	}

	return rec, nil
}

// cell returns row[i], or "" when the row is shorter than the header
// (excelize trims trailing empty cells).
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return row[i]
}
