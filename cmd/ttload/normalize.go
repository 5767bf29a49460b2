package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/parser"
	"github.com/ukaji3/timetable-go/pkg/timetable/report"
)

// tableFlags are the normalization flags shared by normalize, load and run.
type tableFlags struct {
	headerRow  int
	duplicates string
	addID      bool
	upperFirst bool
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.headerRow, "header-row", 1, "1-based header row after pruning; 0 for none")
	cmd.Flags().StringVar(&f.duplicates, "duplicates", string(parser.DuplicateSuffix), "Duplicate column policy: suffix, reject")
	cmd.Flags().BoolVar(&f.addID, "add-id", false, "Prepend an id column when the sheet has none")
	cmd.Flags().BoolVar(&f.upperFirst, "upper-first", false, "Upper-case the first column's text")
}

func (f tableFlags) options() (timetable.Options, error) {
	policy, err := parser.ParseDuplicatePolicy(f.duplicates)
	if err != nil {
		return timetable.Options{}, err
	}
	if f.headerRow < 0 {
		return timetable.Options{}, fmt.Errorf("invalid header row: %d", f.headerRow)
	}
	opts := timetable.DefaultOptions()
	headerRow := f.headerRow
	opts.HeaderRow = &headerRow
	opts.Duplicates = policy
	opts.AddIDColumn = f.addID
	opts.UppercaseFirstColumn = f.upperFirst
	return opts, nil
}

type normalizeOptions struct {
	tableFlags
	outputPath string
	csvPath    string
	sheets     []string
	profile    bool
	pretty     bool
}

// normalizeSummary is printed as JSON after normalization.
type normalizeSummary struct {
	*models.WorkbookData
	Profiles []*report.TableProfile `json:"profiles,omitempty"`
}

func newNormalizeCmd(a *app) *cobra.Command {
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "normalize [input.xlsx]",
		Short: "Clean a timetable workbook",
		Long: `normalize resolves merged cells, drops empty rows and columns, canonicalizes
column names and infers column types for every sheet of a workbook. The
cleaned tables are written to -o (xlsx) and/or --csv; a JSON summary with
the tables and any issues is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNormalize(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Cleaned workbook path (.xlsx)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Cleaned CSV path; with several sheets each gets a _<sheet> suffix")
	cmd.Flags().StringArrayVar(&opts.sheets, "sheet", nil, "Sheet to normalize (repeatable, default: all)")
	opts.tableFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.profile, "profile", false, "Include column profiles and print them to stderr")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

func (a *app) runNormalize(cmd *cobra.Command, inputPath string, o normalizeOptions) error {
	opts, err := o.options()
	if err != nil {
		return err
	}
	opts.Sheets = o.sheets

	var wb *models.WorkbookData
	var normErr error
	if o.outputPath != "" {
		wb, normErr = timetable.NormalizeToFile(inputPath, o.outputPath, opts)
	} else {
		wb, normErr = timetable.NormalizeFile(inputPath, opts)
	}
	if wb == nil {
		return normErr
	}
	for _, issue := range wb.Issues {
		a.log.Warn("normalization issue",
			"kind", issue.Kind,
			"sheet", issue.Sheet,
			"column", issue.Column,
			"row", issue.Row,
			"detail", issue.Detail,
		)
	}

	if o.csvPath != "" {
		if err := writeCSVFiles(o.csvPath, wb.Tables); err != nil {
			return errors.Join(normErr, err)
		}
	}

	summary := normalizeSummary{WorkbookData: wb}
	if o.profile {
		for _, t := range wb.Tables {
			p, err := report.Profile(t)
			if err != nil {
				return errors.Join(normErr, fmt.Errorf("profile %s: %w", t.Name, err))
			}
			if err := report.WriteText(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			summary.Profiles = append(summary.Profiles, p)
		}
	}

	jsonData, err := output.ToJSON(summary, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), jsonData); err != nil {
		return err
	}
	return normErr
}

// writeCSVFiles writes one CSV per table. A single table goes to path;
// several tables get the sheet name appended before the extension.
func writeCSVFiles(path string, tables []*models.Table) error {
	if len(tables) == 1 {
		return output.WriteCSVFile(path, tables[0])
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for _, t := range tables {
		name := fmt.Sprintf("%s_%s%s", base, parser.Canonicalize(t.Name), ext)
		if err := output.WriteCSVFile(name, t); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
