// Package report summarizes normalized tables.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
)

// NumericSummary holds summary statistics of a numeric column.
type NumericSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name     string            `json:"name"`
	Type     models.ColumnType `json:"type"`
	NonNull  int               `json:"non_null"`
	Null     int               `json:"null"`
	Distinct int               `json:"distinct"`
	Numeric  *NumericSummary   `json:"numeric,omitempty"`
}

// TableProfile describes a table.
type TableProfile struct {
	Table   string          `json:"table"`
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Profile computes per-column counts and, for numeric columns with values,
// summary statistics.
func Profile(t *models.Table) (*TableProfile, error) {
	p := &TableProfile{Table: t.Name, Rows: len(t.Rows), Columns: make([]ColumnProfile, len(t.Columns))}

	for j, col := range t.Columns {
		cp := ColumnProfile{Name: col.Name, Type: col.Type}
		distinct := make(map[string]struct{})
		var data stats.Float64Data
		for _, row := range t.Rows {
			var v any
			if j < len(row) {
				v = row[j]
			}
			if v == nil {
				cp.Null++
				continue
			}
			cp.NonNull++
			distinct[output.FormatValue(v)] = struct{}{}
			switch x := v.(type) {
			case int64:
				data = append(data, float64(x))
			case float64:
				data = append(data, x)
			}
		}
		cp.Distinct = len(distinct)

		if col.Type.Numeric() && len(data) > 0 {
			summary, err := summarize(data)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.Name, err)
			}
			cp.Numeric = summary
		}
		p.Columns[j] = cp
	}
	return p, nil
}

func summarize(data stats.Float64Data) (*NumericSummary, error) {
	min, err := data.Min()
	if err != nil {
		return nil, err
	}
	max, err := data.Max()
	if err != nil {
		return nil, err
	}
	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}
	median, err := data.Median()
	if err != nil {
		return nil, err
	}
	stdDev, err := data.StandardDeviation()
	if err != nil {
		return nil, err
	}
	return &NumericSummary{Min: min, Max: max, Mean: mean, Median: median, StdDev: stdDev}, nil
}

// WriteText prints p as an aligned table.
func WriteText(w io.Writer, p *TableProfile) error {
	fmt.Fprintf(w, "table %s: %d rows, %d columns\n", p.Table, p.Rows, len(p.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNON-NULL\tNULL\tDISTINCT\tMIN\tMAX\tMEAN\tMEDIAN")
	for _, c := range p.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d", c.Name, c.Type, c.NonNull, c.Null, c.Distinct)
		if n := c.Numeric; n != nil {
			fmt.Fprintf(tw, "\t%g\t%g\t%.2f\t%g\n", n.Min, n.Max, n.Mean, n.Median)
		} else {
			fmt.Fprint(tw, "\t-\t-\t-\t-\n")
		}
	}
	return tw.Flush()
}
