package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
)

// TableOptions holds parameters for building a table from a grid.
type TableOptions struct {
	// HeaderRow is the 1-based row, counted after pruning, that holds the
	// column headers. Rows above it are discarded. 0 means no header row:
	// columns are named column_1, column_2, ...
	HeaderRow int
	// Duplicates selects how colliding column names are handled.
	Duplicates DuplicatePolicy
	// AddIDColumn prepends an id column numbered from 1 when none exists.
	AddIDColumn bool
	// UppercaseFirstColumn upper-cases the text values of the first column.
	UppercaseFirstColumn bool
}

// DefaultTableOptions returns default table building parameters.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		HeaderRow:  1,
		Duplicates: DuplicateSuffix,
	}
}

// BuildTable resolves merges in g (in place), prunes empty rows and columns,
// splits off the header, canonicalizes column names and infers column types.
// Non-fatal findings are returned as issues even when err is non-nil.
func BuildTable(name string, g *models.Grid, opts TableOptions) (*models.Table, []models.Issue, error) {
	ResolveMerges(g)
	p := Prune(g)

	table := &models.Table{Name: name}
	if p.Height() == 0 {
		return table, nil, nil
	}
	if opts.HeaderRow < 0 || opts.HeaderRow > p.Height() {
		return nil, nil, fmt.Errorf("header row %d out of range: sheet has %d non-empty rows", opts.HeaderRow, p.Height())
	}

	width := p.Width()
	header := make([]string, width)
	if opts.HeaderRow == 0 {
		for i := range header {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	} else {
		copy(header, p.Cells[opts.HeaderRow-1])
	}
	data := p.Cells[opts.HeaderRow:]
	dataRows := p.RowIndex[opts.HeaderRow:]

	// Columns whose data cells are all empty carry only a header.
	var keep []int
	for colIdx := 0; colIdx < width; colIdx++ {
		if len(data) == 0 || !columnEmpty(data, colIdx) {
			keep = append(keep, colIdx)
		}
	}

	headers := make([]string, len(keep))
	for i, colIdx := range keep {
		headers[i] = header[colIdx]
	}

	var issues []models.Issue
	names, collisions, err := CanonicalizeHeaders(headers, opts.Duplicates)
	for _, c := range collisions {
		issues = append(issues, models.Issue{
			Kind:   models.IssueAmbiguousColumn,
			Sheet:  g.Sheet,
			Column: c.Name,
			Col:    p.ColIndex[keep[c.Second]],
			Detail: c.Error(),
		})
	}
	if err != nil {
		return nil, issues, err
	}

	table.Columns = make([]models.Column, len(keep))
	table.Rows = make([][]any, len(data))
	for i := range table.Rows {
		table.Rows[i] = make([]any, len(keep))
	}

	column := make([]string, len(data))
	for j, colIdx := range keep {
		for i, row := range data {
			column[i] = ""
			if colIdx < len(row) {
				column[i] = row[colIdx]
			}
		}

		inf := InferColumn(column)
		table.Columns[j] = models.Column{Name: names[j], Type: inf.Type}
		for i, v := range inf.Values {
			table.Rows[i][j] = v
		}

		if inf.Degraded() {
			bad := inf.FirstUnparseable
			issues = append(issues, models.Issue{
				Kind:   models.IssueUnparseableValue,
				Sheet:  g.Sheet,
				Column: names[j],
				Row:    dataRows[bad],
				Col:    p.ColIndex[colIdx],
				Detail: fmt.Sprintf("value %q is not numeric; %d numeric values kept as text", column[bad], inf.Numeric),
			})
		}
	}

	if opts.UppercaseFirstColumn {
		uppercaseFirstColumn(table)
	}
	if opts.AddIDColumn {
		addIDColumn(table)
	}

	return table, issues, nil
}

func uppercaseFirstColumn(t *models.Table) {
	if len(t.Columns) == 0 || t.Columns[0].Type != models.TypeText {
		return
	}
	for _, row := range t.Rows {
		if s, ok := row[0].(string); ok {
			row[0] = strings.ToUpper(s)
		}
	}
}

func addIDColumn(t *models.Table) {
	if t.ColumnIndex("id") >= 0 {
		return
	}
	t.Columns = append([]models.Column{{Name: "id", Type: models.TypeInteger}}, t.Columns...)
	for i, row := range t.Rows {
		t.Rows[i] = append([]any{int64(i + 1)}, row...)
	}
}
