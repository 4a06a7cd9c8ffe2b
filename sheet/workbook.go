package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DecodeWorkbook reads an .xlsx workbook and returns the first sheet
// as a raw string grid. Cell values come back formatted the way the
// sheet displays them, which is what the positional locator expects.
func DecodeWorkbook(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return Grid(rows), nil
}
