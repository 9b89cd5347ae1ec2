package dataset

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when a workbook has no worksheets.
var ErrNoSheet = errors.New("workbook has no sheets")

// LoadXLSX reads the first worksheet of an Excel workbook. The first row is
// the header, with the same column rules as CSV input.
func LoadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return fromRows(path, rows)
}
