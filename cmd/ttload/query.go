package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/query"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

type queryOptions struct {
	db       string
	table    string
	selects  []string
	where    []string
	like     []string
	order    []string
	limit    int
	distinct string
	split    bool
	day      string
	csv      bool
	pretty   bool
}

func newQueryCmd(a *app) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up rows of a loaded table",
		Long: `query reads a loaded table without modifying it. Column names may be given
in any spelling that canonicalizes to a stored column. Repeating --where for
one column matches any of the values.`,
		Example: `  ttload query --db ECE.db --table timetable --where block=AB-02 --where year=E1 --select section
  ttload query --db ECE.db --table timetable --distinct section
  ttload query --db ECE.db --table timetable --day monday --where section=ECE-01 --csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite store path (required)")
	cmd.Flags().StringVar(&opts.table, "table", "", "Table to query (required)")
	cmd.Flags().StringSliceVar(&opts.selects, "select", nil, "Columns to return (default: all)")
	cmd.Flags().StringArrayVar(&opts.where, "where", nil, "Equality filter column=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.like, "like", nil, "Substring filter column=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.order, "order", nil, "Columns to order by")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum rows (0: no limit)")
	cmd.Flags().StringVar(&opts.distinct, "distinct", "", "Print the distinct values of a column instead of rows")
	cmd.Flags().BoolVar(&opts.split, "split", false, "With --distinct, split comma-separated values")
	cmd.Flags().StringVar(&opts.day, "day", "", "Print one day's periods as p1, p2, ... instead of rows")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "Print rows as CSV instead of JSON")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")
	cmd.MarkFlagsMutuallyExclusive("distinct", "day")

	return cmd
}

// parseFilters splits column=value arguments.
func parseFilters(args []string) ([]query.Filter, error) {
	out := make([]query.Filter, 0, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid filter %q (want column=value)", arg)
		}
		out = append(out, query.Filter{Column: strings.TrimSpace(col), Value: val})
	}
	return out, nil
}

// groupFilters turns repeated equality filters on one column into an IN
// filter.
func groupFilters(filters []query.Filter) ([]query.Filter, []query.InFilter) {
	values := make(map[string][]string)
	var order []string
	for _, f := range filters {
		if _, ok := values[f.Column]; !ok {
			order = append(order, f.Column)
		}
		values[f.Column] = append(values[f.Column], f.Value)
	}

	var eq []query.Filter
	var in []query.InFilter
	for _, col := range order {
		if v := values[col]; len(v) == 1 {
			eq = append(eq, query.Filter{Column: col, Value: v[0]})
		} else {
			in = append(in, query.InFilter{Column: col, Values: v})
		}
	}
	return eq, in
}

func (a *app) runQuery(cmd *cobra.Command, o queryOptions) error {
	where, err := parseFilters(o.where)
	if err != nil {
		return err
	}
	like, err := parseFilters(o.like)
	if err != nil {
		return err
	}

	st, err := store.Open(o.db, a.cfg.StoreOptions().ReadOnlyOptions())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if o.distinct != "" {
		values, err := query.Distinct(ctx, st, o.table, o.distinct)
		if err != nil {
			return err
		}
		if o.split {
			values = query.SplitList(values)
		}
		for _, v := range values {
			fmt.Fprintln(out, v)
		}
		return nil
	}

	var t *models.Table
	eq, in := groupFilters(where)
	if o.day != "" {
		t, err = query.Schedule(ctx, st, query.ScheduleRequest{
			Table: o.table,
			Day:   o.day,
			Keep:  o.selects,
			Eq:    eq,
			In:    in,
		})
	} else {
		t, err = query.Lookup(ctx, st, query.Request{
			Table:    o.table,
			Select:   query.Columns(o.selects...),
			Eq:       eq,
			Contains: like,
			In:       in,
			OrderBy:  o.order,
			Limit:    o.limit,
		})
	}
	if err != nil {
		return err
	}

	if o.csv {
		return output.WriteCSV(out, t)
	}
	jsonData, err := output.ToJSON(t, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(out, jsonData)
}
