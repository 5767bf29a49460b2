package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
)

func timetableGrid() *models.Grid {
	g := models.NewGrid("ECE", [][]string{
		{"B.Tech ECE Timetable", "", "", "", ""},
		{"Block", "Year", "Section", "Strength", "MONDAY P1"},
		{"AB-02", "E1", "ECE-01", "64", "ALGEBRA"},
		{"", "E1", "ECE-02", "60", "PHYSICS"},
		{"", "", "", "", ""},
	})
	g.Merges = []models.MergeRegion{
		{R1: 1, C1: 1, R2: 1, C2: 5},
		{R1: 3, C1: 1, R2: 4, C2: 1},
	}
	return g
}

func TestBuildTableTimetable(t *testing.T) {
	opts := DefaultTableOptions()
	opts.HeaderRow = 2

	table, issues, err := BuildTable("timetable", timetableGrid(), opts)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, "timetable", table.Name)
	assert.Equal(t, []string{"block", "year", "section", "strength", "monday_p1"}, table.ColumnNames())
	assert.Equal(t, models.TypeInteger, table.Columns[3].Type)
	assert.Equal(t, models.TypeText, table.Columns[0].Type)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"AB-02", "E1", "ECE-01", int64(64), "ALGEBRA"}, table.Rows[0])
	assert.Equal(t, []any{"AB-02", "E1", "ECE-02", int64(60), "PHYSICS"}, table.Rows[1])
}

func TestBuildTableMergedRowWithoutHeader(t *testing.T) {
	g := models.NewGrid("Sheet1", [][]string{
		{"ALGEBRA", "", ""},
		{"", "", ""},
	})
	g.Merges = []models.MergeRegion{{R1: 1, C1: 1, R2: 1, C2: 3}}
	opts := DefaultTableOptions()
	opts.HeaderRow = 0

	table, _, err := BuildTable("Sheet1", g, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"column_1", "column_2", "column_3"}, table.ColumnNames())
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []any{"ALGEBRA", "ALGEBRA", "ALGEBRA"}, table.Rows[0])
}

func TestBuildTableDropsHeaderOnlyColumns(t *testing.T) {
	g := models.NewGrid("s", [][]string{
		{"Period", "Start Time", "Notes"},
		{"P1", "9:00", ""},
		{"P2", "9:50", ""},
	})

	table, _, err := BuildTable("timings", g, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "start_time"}, table.ColumnNames())
}

func TestBuildTableKeepsHeadersWithoutData(t *testing.T) {
	g := models.NewGrid("s", [][]string{{"Period", "Start Time"}})

	table, _, err := BuildTable("timings", g, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"period", "start_time"}, table.ColumnNames())
	assert.Empty(t, table.Rows)
}

func TestBuildTableReportsIssues(t *testing.T) {
	g := models.NewGrid("faculty", [][]string{
		{"Name", "NAME", "Room"},
		{"Rao", "R. Rao", "101"},
		{"Das", "S. Das", "Lab-2"},
	})

	table, issues, err := BuildTable("faculty", g, DefaultTableOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "name_2", "room"}, table.ColumnNames())
	assert.Equal(t, models.TypeText, table.Columns[2].Type)
	assert.Equal(t, "101", table.Rows[0][2])

	require.Len(t, issues, 2)
	assert.Equal(t, models.IssueAmbiguousColumn, issues[0].Kind)
	assert.Equal(t, 2, issues[0].Col)
	assert.Equal(t, models.IssueUnparseableValue, issues[1].Kind)
	assert.Equal(t, "room", issues[1].Column)
	assert.Equal(t, 3, issues[1].Row)
	assert.Equal(t, 3, issues[1].Col)
	assert.Equal(t, "faculty", issues[1].Sheet)
}

func TestBuildTableRejectDuplicates(t *testing.T) {
	g := models.NewGrid("s", [][]string{{"Day", "day"}, {"MON", "TUE"}})
	opts := DefaultTableOptions()
	opts.Duplicates = DuplicateReject

	table, issues, err := BuildTable("s", g, opts)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrAmbiguousColumnName)
	assert.Len(t, issues, 1)
}

func TestBuildTableExtras(t *testing.T) {
	g := models.NewGrid("s", [][]string{
		{"Section", "Count"},
		{"ece-01", "3"},
		{"ece-02", "4"},
	})
	opts := DefaultTableOptions()
	opts.AddIDColumn = true
	opts.UppercaseFirstColumn = true

	table, _, err := BuildTable("s", g, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "section", "count"}, table.ColumnNames())
	assert.Equal(t, []any{int64(1), "ECE-01", int64(3)}, table.Rows[0])
	assert.Equal(t, []any{int64(2), "ECE-02", int64(4)}, table.Rows[1])
}

func TestBuildTableHeaderRowOutOfRange(t *testing.T) {
	opts := DefaultTableOptions()
	opts.HeaderRow = 5

	_, _, err := BuildTable("s", models.NewGrid("s", [][]string{{"a"}}), opts)
	assert.Error(t, err)

	empty, _, err := BuildTable("s", models.NewGrid("s", nil), opts)
	require.NoError(t, err)
	assert.Empty(t, empty.Columns)
}
