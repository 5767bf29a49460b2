package models

// IssueKind classifies a non-fatal normalization finding.
type IssueKind string

const (
	// IssueAmbiguousColumn marks two headers canonicalizing to one name.
	IssueAmbiguousColumn IssueKind = "ambiguous_column"
	// IssueUnparseableValue marks a value that kept its column textual.
	IssueUnparseableValue IssueKind = "unparseable_value"
)

// Issue is a reportable, non-fatal finding with its source location.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Sheet  string    `json:"sheet"`
	Column string    `json:"column,omitempty"`
	// Row and Col are 1-based sheet coordinates (0 if not applicable).
	Row    int    `json:"row,omitempty"`
	Col    int    `json:"col,omitempty"`
	Detail string `json:"detail"`
}

// WorkbookData is the normalized form of one workbook.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Tables holds one table per processed sheet, in sheet order.
	Tables []*Table `json:"tables"`
	// Issues lists non-fatal findings from all sheets.
	Issues []Issue `json:"issues,omitempty"`
}

// Table returns the table with the given name, or nil.
func (w *WorkbookData) Table(name string) *Table {
	for _, t := range w.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}
