// Package timetable normalizes timetable workbooks and loads them into
// SQLite stores.
package timetable

import (
	"log/slog"

	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// Options configures normalization.
type Options struct {
	// HeaderRow is the 1-based row, counted after pruning, holding the
	// column headers. 0 means the sheet has no header row.
	// If nil, defaults to 1.
	HeaderRow *int
	// Duplicates selects the policy for colliding column names.
	// If empty, defaults to suffixing.
	Duplicates parser.DuplicatePolicy
	// AddIDColumn prepends an id column when the sheet has none.
	AddIDColumn bool
	// UppercaseFirstColumn upper-cases the text of the first column.
	UppercaseFirstColumn bool
	// Sheets restricts normalization to the named sheets. Empty means all.
	Sheets []string
}

// DefaultOptions returns default normalization options.
func DefaultOptions() Options {
	return Options{
		Duplicates: parser.DuplicateSuffix,
	}
}

// HeaderRowIndex returns the effective header row.
func (o Options) HeaderRowIndex() int {
	if o.HeaderRow != nil {
		return *o.HeaderRow
	}
	return 1
}

func (o Options) tableOptions() parser.TableOptions {
	topts := parser.DefaultTableOptions()
	topts.HeaderRow = o.HeaderRowIndex()
	if o.Duplicates != "" {
		topts.Duplicates = o.Duplicates
	}
	topts.AddIDColumn = o.AddIDColumn
	topts.UppercaseFirstColumn = o.UppercaseFirstColumn
	return topts
}

// LoadOptions configures loading one workbook into a store.
type LoadOptions struct {
	Options
	// Sheet selects the source sheet. Empty means the first sheet.
	Sheet string
	// Store configures the destination database connection.
	Store store.Options
}

// DefaultLoadOptions returns default load options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Options: DefaultOptions(),
		Store:   store.DefaultOptions(),
	}
}

// RunOptions configures a batch run.
type RunOptions struct {
	// Load is applied to every unit. A unit's configured sheet overrides
	// Load.Sheet.
	Load LoadOptions
	// Branches restricts the run to these branch ids. Empty means all.
	Branches []string
	// Logger receives per-unit progress. If nil, slog.Default is used.
	Logger *slog.Logger
}

// DefaultRunOptions returns default batch options.
func DefaultRunOptions() RunOptions {
	return RunOptions{Load: DefaultLoadOptions()}
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
