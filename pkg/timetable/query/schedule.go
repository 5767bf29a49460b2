package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// DayPeriodColumns returns the canonical names of the first n period
// columns of a day: monday_p1, monday_p2, ...
func DayPeriodColumns(day string, n int) []string {
	base := parser.Canonicalize(day)
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s_p%d", base, i+1)
	}
	return out
}

// periodColumns finds the <day>_p<k> columns of the schema ordered by k.
func (s *schema) periodColumns(day string) []string {
	prefix := parser.Canonicalize(day) + "_p"
	type period struct {
		col string
		k   int
	}
	var found []period
	for _, c := range s.order {
		name := parser.Canonicalize(c)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		k, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil || k < 1 {
			continue
		}
		found = append(found, period{col: c, k: k})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].k < found[j].k })

	out := make([]string, len(found))
	for i, p := range found {
		out[i] = p.col
	}
	return out
}

// ScheduleRequest selects one day of a section's timetable.
type ScheduleRequest struct {
	Table string
	Day   string
	// Keep lists leading columns (e.g. room, strength) included when the
	// table has them.
	Keep []string
	Eq   []Filter
	In   []InFilter
}

// Schedule returns Keep columns followed by the day's period columns,
// renamed p1, p2, ... The day must have at least one period column.
func Schedule(ctx context.Context, st *store.Store, req ScheduleRequest) (*models.Table, error) {
	s, err := loadSchema(ctx, st, req.Table)
	if err != nil {
		return nil, err
	}

	periods := s.periodColumns(req.Day)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no period columns for day %q in table %q", ErrUnknownColumn, req.Day, req.Table)
	}

	var sel []Select
	for _, k := range req.Keep {
		if _, err := s.column(k); err == nil {
			sel = append(sel, Select{Column: k})
		}
	}
	for i, p := range periods {
		sel = append(sel, Select{Column: p, As: "p" + strconv.Itoa(i+1)})
	}

	q, args, err := s.build(Request{Table: req.Table, Select: sel, Eq: req.Eq, In: req.In})
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

// Subjects collects the distinct non-empty values of the p<k> columns of a
// schedule, e.g. to look up the faculty teaching them.
func Subjects(schedule *models.Table) []string {
	seen := make(map[string]bool)
	var out []string
	for j, c := range schedule.Columns {
		if !isPeriodAlias(c.Name) {
			continue
		}
		for _, row := range schedule.Rows {
			v, ok := row[j].(string)
			v = strings.TrimSpace(v)
			if !ok || v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func isPeriodAlias(name string) bool {
	if !strings.HasPrefix(name, "p") {
		return false
	}
	k, err := strconv.Atoi(name[1:])
	return err == nil && k > 0
}
