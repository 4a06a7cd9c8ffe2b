package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "11-Feb-2026"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "16:40"))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", "SVK"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	grid, err := DecodeWorkbook(&buf)
	require.NoError(t, err)

	assert.Equal(t, "11-Feb-2026", grid.Cell(0, 0))
	assert.Equal(t, "16:40", grid.Cell(1, 1))
	assert.Equal(t, "SVK", grid.Cell(2, 2))
	assert.Equal(t, "", grid.Cell(0, 5))
}

func TestDecodeWorkbook_NotAWorkbook(t *testing.T) {
	_, err := DecodeWorkbook(strings.NewReader("not a zip archive"))
	assert.Error(t, err)
}
