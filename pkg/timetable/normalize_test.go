package timetable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/xuri/excelize/v2"
)

// sheetSpec describes one worksheet of a test workbook.
type sheetSpec struct {
	name   string
	rows   [][]any
	merges [][2]string
}

func writeWorkbook(t *testing.T, path string, sheets ...sheetSpec) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
		for _, m := range s.merges {
			require.NoError(t, f.MergeCell(s.name, m[0], m[1]))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func timetableSheet() sheetSpec {
	return sheetSpec{
		name: "ECE",
		rows: [][]any{
			{"Year", "Section", "Monday P1", "Monday P2"},
			{"E1", "ECE-01", "ALGEBRA", "PHYSICS"},
			{"", "ECE-02", "CHEMISTRY", "ALGEBRA"},
		},
		merges: [][2]string{{"A2", "A3"}},
	}
}

func TestNormalizeFileAlgebraScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.xlsx")
	writeWorkbook(t, src, sheetSpec{
		name: "Sheet1",
		rows: [][]any{
			{"ALGEBRA", "", ""},
			{" ", "", ""},
		},
		merges: [][2]string{{"A1", "C1"}},
	})

	noHeader := 0
	opts := DefaultOptions()
	opts.HeaderRow = &noHeader

	dst := filepath.Join(dir, "clean.xlsx")
	wb, err := NormalizeToFile(src, dst, opts)
	require.NoError(t, err)

	require.Len(t, wb.Tables, 1)
	table := wb.Tables[0]
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []any{"ALGEBRA", "ALGEBRA", "ALGEBRA"}, table.Rows[0])

	out, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer out.Close()

	rows, err := out.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"column_1", "column_2", "column_3"},
		{"ALGEBRA", "ALGEBRA", "ALGEBRA"},
	}, rows)
	merged, err := out.GetMergeCells("Sheet1")
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestNormalizeFileTimetable(t *testing.T) {
	src := filepath.Join(t.TempDir(), "ece.xlsx")
	writeWorkbook(t, src, timetableSheet())

	wb, err := NormalizeFile(src, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "ece.xlsx", wb.BookName)
	table := wb.Table("ECE")
	require.NotNil(t, table)
	assert.Equal(t, []string{"year", "section", "monday_p1", "monday_p2"}, table.ColumnNames())
	assert.Equal(t, []any{"E1", "ECE-02", "CHEMISTRY", "ALGEBRA"}, table.Rows[1])
}

func TestNormalizeFileMissingSource(t *testing.T) {
	_, err := NormalizeFile(filepath.Join(t.TempDir(), "nope.xlsx"), DefaultOptions())
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestNormalizeFileInvalidFormat(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("not a workbook"), 0o644))

	_, err := NormalizeFile(src, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNormalizeFileCollectsSheetErrors(t *testing.T) {
	src := filepath.Join(t.TempDir(), "mixed.xlsx")
	writeWorkbook(t, src,
		sheetSpec{name: "Faculty", rows: [][]any{
			{"Subject Code", "subject  code"},
			{"MA101", "MA102"},
		}},
		timetableSheet(),
	)

	opts := DefaultOptions()
	opts.Duplicates = parser.DuplicateReject

	wb, err := NormalizeFile(src, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousColumnName)

	var se *SheetError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Faculty", se.Sheet)
	assert.Equal(t, "mixed.xlsx", se.Book)

	require.Len(t, wb.Tables, 1, "the healthy sheet is still normalized")
	assert.Equal(t, "ECE", wb.Tables[0].Name)
	require.Len(t, wb.Issues, 1)
	assert.Equal(t, models.IssueAmbiguousColumn, wb.Issues[0].Kind)
	assert.Equal(t, "subject_code", wb.Issues[0].Column)
}

func TestNormalizeFileSuffixesDuplicates(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dup.xlsx")
	writeWorkbook(t, src, sheetSpec{name: "Faculty", rows: [][]any{
		{"Name", "NAME"},
		{"Dr. Rao", "Rao"},
	}})

	wb, err := NormalizeFile(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "name_2"}, wb.Tables[0].ColumnNames())
	assert.Len(t, wb.Issues, 1)
}

func TestNormalizeFileUnknownSheet(t *testing.T) {
	src := filepath.Join(t.TempDir(), "ece.xlsx")
	writeWorkbook(t, src, timetableSheet())

	opts := DefaultOptions()
	opts.Sheets = []string{"CSE"}
	wb, err := NormalizeFile(src, opts)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Empty(t, wb.Tables)
}

func TestNormalizeToFileNothingToWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ece.xlsx")
	writeWorkbook(t, src, timetableSheet())

	opts := DefaultOptions()
	opts.Sheets = []string{"CSE"}
	dst := filepath.Join(dir, "out.xlsx")
	_, err := NormalizeToFile(src, dst, opts)
	require.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestOptionsHeaderRowDefault(t *testing.T) {
	assert.Equal(t, 1, DefaultOptions().HeaderRowIndex())

	three := 3
	assert.Equal(t, 3, Options{HeaderRow: &three}.HeaderRowIndex())
	assert.Equal(t, parser.DuplicateSuffix, Options{}.tableOptions().Duplicates)
}
