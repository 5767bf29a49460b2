package timetable

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/xuri/excelize/v2"
)

// NormalizeFile builds one normalized table per selected sheet of the
// workbook at path. A failing sheet is reported as a *SheetError in the
// joined error while the remaining sheets are still returned.
func NormalizeFile(path string, opts Options) (*models.WorkbookData, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bookName := filepath.Base(path)
	sheets := opts.Sheets
	if len(sheets) == 0 {
		sheets = f.GetSheetList()
	}

	wb := &models.WorkbookData{BookName: bookName}
	var errs []error
	for _, sheetName := range sheets {
		table, issues, err := normalizeSheet(f, sheetName, sheetName, opts.tableOptions())
		wb.Issues = append(wb.Issues, issues...)
		if err != nil {
			errs = append(errs, &SheetError{Book: bookName, Sheet: sheetName, Err: err})
			continue
		}
		wb.Tables = append(wb.Tables, table)
	}

	return wb, errors.Join(errs...)
}

// NormalizeToFile normalizes the workbook at src and writes the cleaned
// tables to dst. Sheets that fail are left out of dst; their errors are
// returned alongside the written result.
func NormalizeToFile(src, dst string, opts Options) (*models.WorkbookData, error) {
	wb, err := NormalizeFile(src, opts)
	if wb == nil {
		return nil, err
	}
	if len(wb.Tables) == 0 {
		return wb, errors.Join(err, fmt.Errorf("%s: no sheet could be normalized", src))
	}
	if werr := output.WriteWorkbook(dst, wb.Tables); werr != nil {
		return wb, errors.Join(err, fmt.Errorf("write %s: %w", dst, werr))
	}
	return wb, err
}

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidFormat, err)
	}
	return f, nil
}

func normalizeSheet(f *excelize.File, sheetName, tableName string, topts parser.TableOptions) (*models.Table, []models.Issue, error) {
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, nil, fmt.Errorf("sheet not found: %w", ErrInvalidFormat)
	}
	grid, err := parser.ReadGrid(f, sheetName)
	if err != nil {
		return nil, nil, err
	}
	return parser.BuildTable(tableName, grid, topts)
}
