// Package query runs read-only, parameterized lookups against loaded tables.
// Table and column names are checked against the live schema and quoted;
// values are always bound parameters.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// ErrUnknownColumn indicates a column that the table does not have.
var ErrUnknownColumn = errors.New("unknown column")

// ErrUnknownTable indicates a table that the store does not have.
var ErrUnknownTable = errors.New("unknown table")

// Select names a result column, optionally renamed.
type Select struct {
	Column string
	As     string
}

// Filter is a single column condition.
type Filter struct {
	Column string
	Value  string
}

// InFilter matches any of Values.
type InFilter struct {
	Column string
	Values []string
}

// Request describes a lookup. Column names may be given in any form that
// canonicalizes to a stored column ("MONDAY P1" finds monday_p1).
type Request struct {
	Table string
	// Select lists the result columns. Empty selects every column.
	Select []Select
	// Eq filters are column = value.
	Eq []Filter
	// Contains filters are case-insensitive substring matches.
	Contains []Filter
	// In filters are column IN (values). An empty value list matches
	// nothing.
	In      []InFilter
	OrderBy []string
	// Limit caps the row count when positive.
	Limit int
}

// Columns returns the names of request columns for a plain projection.
func Columns(names ...string) []Select {
	out := make([]Select, len(names))
	for i, n := range names {
		out[i] = Select{Column: n}
	}
	return out
}

// schema resolves request identifiers to stored column names.
type schema struct {
	table string
	cols  map[string]string
	order []string
}

func loadSchema(ctx context.Context, st *store.Store, table string) (*schema, error) {
	ok, err := st.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	cols, err := st.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	s := &schema{table: table, cols: make(map[string]string, len(cols))}
	for _, c := range cols {
		s.cols[parser.Canonicalize(c.Name)] = c.Name
		s.order = append(s.order, c.Name)
	}
	return s, nil
}

func (s *schema) column(name string) (string, error) {
	if c, ok := s.cols[parser.Canonicalize(name)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, s.table)
}

// Build validates req against the table schema and returns the SQL and its
// arguments.
func Build(ctx context.Context, st *store.Store, req Request) (string, []any, error) {
	s, err := loadSchema(ctx, st, req.Table)
	if err != nil {
		return "", nil, err
	}
	return s.build(req)
}

func (s *schema) build(req Request) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(req.Select) == 0 {
		sb.WriteString("*")
	}
	for i, sel := range req.Select {
		col, err := s.column(sel.Column)
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(store.QuoteIdent(col))
		if sel.As != "" {
			sb.WriteString(" AS " + store.QuoteIdent(sel.As))
		}
	}
	sb.WriteString(" FROM " + store.QuoteIdent(s.table))

	var (
		conds []string
		args  []any
	)
	for _, f := range req.Eq {
		col, err := s.column(f.Column)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, store.QuoteIdent(col)+" = ?")
		args = append(args, f.Value)
	}
	for _, f := range req.Contains {
		col, err := s.column(f.Column)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, store.QuoteIdent(col)+` LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.TrimSpace(f.Value))+"%")
	}
	for _, f := range req.In {
		col, err := s.column(f.Column)
		if err != nil {
			return "", nil, err
		}
		if len(f.Values) == 0 {
			conds = append(conds, "0")
			continue
		}
		conds = append(conds, store.QuoteIdent(col)+" IN ("+strings.TrimRight(strings.Repeat("?,", len(f.Values)), ",")+")")
		for _, v := range f.Values {
			args = append(args, v)
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	if len(req.OrderBy) > 0 {
		order := make([]string, len(req.OrderBy))
		for i, o := range req.OrderBy {
			col, err := s.column(o)
			if err != nil {
				return "", nil, err
			}
			order[i] = store.QuoteIdent(col)
		}
		sb.WriteString(" ORDER BY " + strings.Join(order, ", "))
	}
	if req.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", req.Limit))
	}
	return sb.String(), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Lookup runs req and returns the matching rows.
func Lookup(ctx context.Context, st *store.Store, req Request) (*models.Table, error) {
	q, args, err := Build(ctx, st, req)
	if err != nil {
		return nil, err
	}
	rows, err := st.DB().QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return store.ScanTable(req.Table, rows)
}

// Distinct returns the sorted distinct non-null values of a column, as
// displayed text.
func Distinct(ctx context.Context, st *store.Store, table, column string) ([]string, error) {
	s, err := loadSchema(ctx, st, table)
	if err != nil {
		return nil, err
	}
	col, err := s.column(column)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL ORDER BY %[1]s",
		store.QuoteIdent(col), store.QuoteIdent(table))
	var values []any
	if err := st.DB().SelectContext(ctx, &values, q); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(output.FormatValue(v)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// SplitList splits comma-separated entries such as "ECE-01, ECE-02" into
// their sorted, unique tokens.
func SplitList(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.Join(strings.Fields(tok), "")
			if tok == "" || seen[tok] {
				continue
			}
			seen[tok] = true
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}
