package timetable

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// LoadResult describes a completed load.
type LoadResult struct {
	Table   string         `json:"table"`
	Sheet   string         `json:"sheet"`
	Rows    int            `json:"rows"`
	Columns []string       `json:"columns"`
	Issues  []models.Issue `json:"issues,omitempty"`
}

// LoadFile reads a sheet of the workbook at source (opts.Sheet, or the first
// sheet), normalizes it and fully replaces table in the SQLite store at
// storePath. The replacement is atomic: readers see the old or the new
// table, never a mix. Store failures wrap ErrDestinationWrite.
func LoadFile(ctx context.Context, source, storePath, table string, opts LoadOptions) (*LoadResult, error) {
	f, err := openWorkbook(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	book := filepath.Base(source)

	t, issues, err := normalizeSheet(f, sheet, table, opts.tableOptions())
	if err != nil {
		return nil, &SheetError{Book: book, Sheet: sheet, Err: err}
	}
	if len(t.Columns) == 0 {
		return nil, &SheetError{Book: book, Sheet: sheet, Err: fmt.Errorf("sheet has no data: %w", ErrInvalidFormat)}
	}

	if err := writeTable(ctx, storePath, table, t, opts.Store); err != nil {
		return nil, err
	}

	return &LoadResult{
		Table:   table,
		Sheet:   sheet,
		Rows:    len(t.Rows),
		Columns: t.ColumnNames(),
		Issues:  issues,
	}, nil
}

func writeTable(ctx context.Context, storePath, table string, t *models.Table, sopts store.Options) error {
	sopts.ReadOnly = false
	st, err := store.Open(storePath, sopts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDestinationWrite, err)
	}
	defer st.Close()

	if err := st.Replace(ctx, table, t); err != nil {
		return fmt.Errorf("%w: table %q in %s: %w", ErrDestinationWrite, table, storePath, err)
	}
	return nil
}
