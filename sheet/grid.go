// Package sheet turns the human-maintained prediction spreadsheet into
// normalized match, user and guess data. The layout is positional: row
// roles sit at fixed indices, match columns do not, so the locator
// discovers them by scanning.
package sheet

import "strings"

// Grid is a raw 2-D cell grid, rows by columns, values already
// stringified. Rows may be ragged; out-of-range access reads as blank.
type Grid [][]string

// Cell returns the trimmed value at (row, col), or "" when the
// coordinate falls outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// Width returns the widest row extent across the given row indices.
// The locator scans up to this bound so sheets that grow to the right
// between imports are still covered.
func (g Grid) Width(rows ...int) int {
	max := 0
	for _, row := range rows {
		if row < 0 || row >= len(g) {
			continue
		}
		if n := len(g[row]); n > max {
			max = n
		}
	}
	return max
}

// Layout maps row roles and fixed informational columns to indices.
// Column extents of the match area are deliberately absent: the sheet
// author inserts and removes match columns between imports.
type Layout struct {
	DateRow     int
	TimeRow     int
	HomeTeamRow int
	AwayTeamRow int

	UserStartRow int
	EmailCol     int
	NameCol      int
	CountryCol   int

	FirstMatchCol int
}

// DefaultLayout mirrors the workbook shipped by the pool operators:
// dates in row 1, times in row 2, home codes in row 3, away codes in
// row 5, user data from row 7 with email in column C.
func DefaultLayout() Layout {
	return Layout{
		DateRow:       0,
		TimeRow:       1,
		HomeTeamRow:   2,
		AwayTeamRow:   4,
		UserStartRow:  6,
		EmailCol:      2,
		NameCol:       3,
		CountryCol:    4,
		FirstMatchCol: 10,
	}
}

// sentinelLabels are non-match header cells interleaved with match
// columns in the team rows.
var sentinelLabels = map[string]bool{
	"Points":  true,
	"Point":   true,
	"Results": true,
	"Result":  true,
	"Mail":    true,
}

func isSentinel(value string) bool {
	return sentinelLabels[value]
}
