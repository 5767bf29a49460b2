package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable/nlq"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

type askOptions struct {
	db     string
	table  string
	csv    bool
	pretty bool
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a plain-language question about a loaded table",
		Long: `ask sends the question and the table's columns to the configured
chat-completions endpoint (NLQ_API_KEY, NLQ_BASE_URL, NLQ_MODEL) and runs
the returned SQL on a read-only connection. The SQL is logged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite store path (required)")
	cmd.Flags().StringVar(&opts.table, "table", "", "Table to ask about (required)")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "Print the result as CSV instead of JSON")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

// translator builds the question translator from configuration.
func (a *app) translator() (nlq.Translator, error) {
	if !a.cfg.NLQ.Enabled() {
		return nil, errors.New("question translation is not configured (set NLQ_API_KEY)")
	}
	client, err := nlq.NewOpenAIClient(a.cfg.NLQ.Client())
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) runAsk(cmd *cobra.Command, question string, o askOptions) error {
	tr, err := a.translator()
	if err != nil {
		return err
	}

	st, err := store.Open(o.db, a.cfg.StoreOptions().ReadOnlyOptions())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ans, err := nlq.Ask(cmd.Context(), tr, st, o.table, question)
	if ans != nil {
		a.log.Info("generated sql", "table", o.table, "sql", ans.SQL)
	}
	if err != nil {
		return err
	}

	if o.csv {
		return output.WriteCSV(cmd.OutOrStdout(), ans.Result)
	}
	jsonData, err := output.ToJSON(ans, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), jsonData)
}
