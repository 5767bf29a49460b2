package timetable

import (
	"errors"
	"fmt"

	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
)

// ErrSourceNotFound indicates the input workbook does not exist.
var ErrSourceNotFound = errors.New("source not found")

// ErrInvalidFormat indicates the input file is not a readable xlsx workbook
// or lacks the requested sheet.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrAmbiguousColumnName indicates two headers canonicalize to one name
// under the reject policy.
var ErrAmbiguousColumnName = parser.ErrAmbiguousColumnName

// ErrDestinationWrite indicates the store could not be opened or written.
var ErrDestinationWrite = errors.New("destination write failed")

// SheetError represents a failure to normalize one sheet.
type SheetError struct {
	Book  string
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q of %s: %v", e.Sheet, e.Book, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// UnitError represents a failed (branch, dataset) load.
type UnitError struct {
	Branch  string
	Dataset string
	Source  string
	Store   string
	Table   string
	Err     error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s/%s (%s -> %s:%s): %v", e.Branch, e.Dataset, e.Source, e.Store, e.Table, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
