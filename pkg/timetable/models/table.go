package models

// ColumnType is the storage type inferred for a column.
type ColumnType string

const (
	// TypeInteger holds whole numbers (int64).
	TypeInteger ColumnType = "INTEGER"
	// TypeFloat holds numbers with a fractional part (float64).
	TypeFloat ColumnType = "REAL"
	// TypeText holds original strings.
	TypeText ColumnType = "TEXT"
)

// Numeric reports whether values of this type are numbers.
func (t ColumnType) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Column is a named, typed table column.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is a normalized table. Each row holds one value per column:
// int64, float64, string or nil.
type Table struct {
	// Name is the logical table name (sheet name or destination table).
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
