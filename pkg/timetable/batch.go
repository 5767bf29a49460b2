package timetable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/timetable-go/pkg/timetable/branch"
)

// Status is the outcome of one batch unit.
type Status string

const (
	StatusLoaded  Status = "loaded"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// UnitResult reports one (branch, dataset) load.
type UnitResult struct {
	Branch   string         `json:"branch"`
	Dataset  branch.Dataset `json:"dataset"`
	Source   string         `json:"source,omitempty"`
	Store    string         `json:"store,omitempty"`
	Table    string         `json:"table,omitempty"`
	Status   Status         `json:"status"`
	Rows     int            `json:"rows"`
	Columns  int            `json:"columns"`
	Issues   int            `json:"issues"`
	Duration time.Duration  `json:"duration"`
	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

// Report is the result of a batch run.
type Report struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Units    []UnitResult  `json:"units"`
}

// Count returns the number of units with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, u := range r.Units {
		if u.Status == s {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed units, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, u := range r.Units {
		if u.Status == StatusFailed && u.Err != nil {
			errs = append(errs, u.Err)
		}
	}
	return errors.Join(errs...)
}

// Run loads every configured dataset of the selected branches, one unit at
// a time, in branch id order and dataset order timetable, faculty,
// timings. Absent datasets are skipped without touching any store. A unit
// whose source is missing is skipped; any other unit error marks it failed.
// Neither stops the remaining units.
func Run(ctx context.Context, cfg branch.Config, opts RunOptions) (*Report, error) {
	names, err := selectBranches(cfg, opts.Branches)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	log := opts.logger().With("run_id", report.RunID)
	log.Info("batch run started", "branches", len(names))

	for _, name := range names {
		b, _ := cfg.Get(name)
		for _, ds := range branch.Datasets() {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(report.Started)
				return report, err
			}
			report.Units = append(report.Units, runUnit(ctx, log, b, ds, opts.Load))
		}
	}

	report.Duration = time.Since(report.Started)
	log.Info("batch run finished",
		"loaded", report.Count(StatusLoaded),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		"duration", report.Duration)
	return report, nil
}

func selectBranches(cfg branch.Config, want []string) ([]string, error) {
	if len(want) == 0 {
		return cfg.Names(), nil
	}
	names := make([]string, 0, len(want))
	seen := make(map[string]bool, len(want))
	for _, w := range want {
		b, ok := cfg.Get(w)
		if !ok {
			return nil, fmt.Errorf("unknown branch %q", w)
		}
		if !seen[b.Name] {
			seen[b.Name] = true
			names = append(names, b.Name)
		}
	}
	return names, nil
}

func runUnit(ctx context.Context, log *slog.Logger, b *branch.Branch, ds branch.Dataset, lopts LoadOptions) UnitResult {
	res := UnitResult{Branch: b.Name, Dataset: ds}
	target := b.Target(ds)
	if target == nil {
		res.Status = StatusSkipped
		res.Reason = "dataset not configured"
		log.Debug("unit skipped", "branch", b.Name, "dataset", ds, "reason", res.Reason)
		return res
	}

	res.Source, res.Store, res.Table = target.Source, target.Store, target.Table
	log = log.With("branch", b.Name, "dataset", ds, "source", target.Source, "store", target.Store, "table", target.Table)

	if target.Sheet != "" {
		lopts.Sheet = target.Sheet
	}

	start := time.Now()
	lr, err := LoadFile(ctx, target.Source, target.Store, target.Table, lopts)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = &UnitError{
			Branch:  b.Name,
			Dataset: string(ds),
			Source:  target.Source,
			Store:   target.Store,
			Table:   target.Table,
			Err:     err,
		}
		res.Reason = err.Error()
		if errors.Is(err, ErrSourceNotFound) {
			res.Status = StatusSkipped
			log.Warn("unit skipped", "err", err)
		} else {
			res.Status = StatusFailed
			log.Error("unit failed", "err", err)
		}
		return res
	}

	res.Status = StatusLoaded
	res.Rows = lr.Rows
	res.Columns = len(lr.Columns)
	res.Issues = len(lr.Issues)
	for _, is := range lr.Issues {
		log.Warn("normalization issue", "kind", is.Kind, "column", is.Column, "row", is.Row, "detail", is.Detail)
	}
	log.Info("unit loaded", "rows", lr.Rows, "columns", res.Columns, "duration", res.Duration)
	return res
}
