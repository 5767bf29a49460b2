// Package output writes normalized tables to workbooks, CSV and JSON.
package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's sheet name length limit.
const maxSheetName = 31

// WriteWorkbook writes one sheet per table: a header row followed by typed
// data rows. Empty values are left blank.
func WriteWorkbook(path string, tables []*models.Table) error {
	if len(tables) == 0 {
		return errors.New("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := uniqueSheetName(t.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, t); err != nil {
			return fmt.Errorf("write sheet %q: %w", name, err)
		}
	}

	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, t *models.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		copy(values, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// uniqueSheetName makes name a valid, unused Excel sheet name.
func uniqueSheetName(name string, idx int, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))
	if clean == "" {
		clean = fmt.Sprintf("Sheet%d", idx+1)
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
