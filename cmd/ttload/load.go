package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
)

type loadOptions struct {
	tableFlags
	db     string
	table  string
	sheet  string
	pretty bool
}

func newLoadCmd(a *app) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load [cleaned.xlsx]",
		Short: "Replace a SQLite table with one sheet of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite store path (required)")
	cmd.Flags().StringVar(&opts.table, "table", "", "Destination table (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Source sheet (default: first sheet)")
	opts.tableFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, source string, o loadOptions) error {
	nopts, err := o.options()
	if err != nil {
		return err
	}
	lopts := timetable.LoadOptions{
		Options: nopts,
		Sheet:   o.sheet,
		Store:   a.cfg.StoreOptions(),
	}

	res, err := timetable.LoadFile(cmd.Context(), source, o.db, o.table, lopts)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	a.log.Info("table loaded",
		"source", source,
		"store", o.db,
		"table", res.Table,
		"sheet", res.Sheet,
		"rows", res.Rows,
	)

	jsonData, err := output.ToJSON(res, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), jsonData)
}
