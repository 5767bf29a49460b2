package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable"
	"github.com/ukaji3/timetable-go/pkg/timetable/branch"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
)

type runOptions struct {
	tableFlags
	manifest string
	branches []string
	pretty   bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load every configured dataset of every branch",
		Long: `run reads the branch manifest and loads the timetable, faculty and timings
dataset of each branch into its store. Datasets a branch does not have are
skipped. A failing unit does not stop the others; the command exits non-zero
when any unit failed. The run report is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.manifest, "branches", "", "Branch manifest (default from TIMETABLE_BRANCHES)")
	cmd.Flags().StringArrayVar(&opts.branches, "branch", nil, "Branch to load (repeatable, default: all)")
	opts.tableFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

func (a *app) manifestPath(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Paths.Branches
}

func (a *app) runBatch(cmd *cobra.Command, o runOptions) error {
	nopts, err := o.options()
	if err != nil {
		return err
	}
	cfg, err := branch.LoadManifest(a.manifestPath(o.manifest))
	if err != nil {
		return err
	}

	ropts := timetable.DefaultRunOptions()
	ropts.Load.Options = nopts
	ropts.Load.Store = a.cfg.StoreOptions()
	ropts.Branches = o.branches
	ropts.Logger = a.log

	report, runErr := timetable.Run(cmd.Context(), cfg, ropts)
	if report == nil {
		return runErr
	}

	jsonData, err := output.ToJSON(report, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), jsonData); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if n := report.Count(timetable.StatusFailed); n > 0 {
		return fmt.Errorf("%d of %d units failed", n, len(report.Units))
	}
	return nil
}
