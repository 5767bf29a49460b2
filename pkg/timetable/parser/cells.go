// Package parser turns worksheet cells into normalized tables.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/xuri/excelize/v2"
)

// ReadGrid reads the cell values and merge regions of a sheet.
// Numbers come back as stored so number formats cannot round them; cells
// styled as a date or time keep their displayed text (e.g. "9:00").
// Merge regions are returned unresolved; see ResolveMerges.
func ReadGrid(f *excelize.File, sheetName string) (*models.Grid, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	display, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if err := keepDisplayed(f, sheetName, rows, display); err != nil {
		return nil, err
	}

	grid := models.NewGrid(sheetName, rows)

	merged, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, fmt.Errorf("merge cells: %w", err)
	}
	for _, mc := range merged {
		region, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("merge cells: %w", err)
		}
		grid.Merges = append(grid.Merges, region)
	}

	return grid, nil
}

// keepDisplayed replaces raw values in rows with the displayed text for
// every cell that is not a plain number: booleans, strings, dates and
// numbers under a date or time format.
func keepDisplayed(f *excelize.File, sheetName string, rows, display [][]string) error {
	dateStyles := make(map[int]bool)
	for r := range rows {
		for c := range rows[r] {
			shown := ""
			if r < len(display) && c < len(display[r]) {
				shown = display[r][c]
			}
			if rows[r][c] == shown {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			keep, err := showsFormatted(f, sheetName, cell, dateStyles)
			if err != nil {
				return fmt.Errorf("cell %s: %w", cell, err)
			}
			if keep {
				rows[r][c] = shown
			}
		}
	}
	return nil
}

// showsFormatted reports whether a cell's displayed text is its value.
func showsFormatted(f *excelize.File, sheetName, cell string, dateStyles map[int]bool) (bool, error) {
	typ, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return false, err
	}
	if typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber {
		return true, nil
	}
	idx, err := f.GetCellStyle(sheetName, cell)
	if err != nil || idx == 0 {
		return false, err
	}
	if isDate, ok := dateStyles[idx]; ok {
		return isDate, nil
	}
	style, err := f.GetStyle(idx)
	if err != nil {
		return false, err
	}
	isDate := isDateTimeFormat(style)
	dateStyles[idx] = isDate
	return isDate, nil
}

// isDateTimeFormat reports whether a style renders numbers as dates or times.
func isDateTimeFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateTimeCode(*style.CustomNumFmt)
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 22, n >= 45 && n <= 47, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}
	return false
}

// isDateTimeCode scans a format code for date or time tokens, skipping
// quoted literals, escapes and bracketed sections other than elapsed time.
func isDateTimeCode(code string) bool {
	if strings.EqualFold(code, "general") {
		return false
	}
	for i := 0; i < len(code); i++ {
		switch ch := code[i]; ch {
		case '"':
			if end := strings.IndexByte(code[i+1:], '"'); end >= 0 {
				i += end + 1
			} else {
				return false
			}
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				return false
			}
			if elapsed := strings.ToLower(code[i+1 : i+1+end]); elapsed != "" && strings.Trim(elapsed, "hms") == "" {
				return true
			}
			i += end + 1
		default:
			switch ch | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
// NaN and infinities are not numbers here; they stay strings.
func parseValue(s string) interface{} {
	t := strings.TrimSpace(s)
	// Try integer first
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	// Return as string
	return s
}
