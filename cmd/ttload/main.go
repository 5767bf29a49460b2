// Package main provides the ttload CLI: normalize timetable workbooks, load
// them into per-branch SQLite stores and query the result.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/internal/config"
	"github.com/ukaji3/timetable-go/internal/logging"
)

// app is the state shared by all subcommands, set up before any of them
// runs.
type app struct {
	cfg *config.Config
	log *slog.Logger

	envFile   string
	logLevel  string
	logFormat string
	driver    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ttload",
		Short: "Normalize timetable workbooks and load them into SQLite",
		Long: `ttload cleans timetable spreadsheets (merged cells, empty rows and
columns, messy headers, mixed types) and loads them into per-branch SQLite
stores, replacing the previous contents of each table.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Env file to load (default: .env if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from TIMETABLE_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text, json (default from TIMETABLE_LOG_FORMAT)")
	flags.StringVar(&a.driver, "driver", "", "SQLite driver: sqlite (pure Go) or sqlite3 (cgo)")

	rootCmd.AddCommand(
		newNormalizeCmd(a),
		newLoadCmd(a),
		newRunCmd(a),
		newQueryCmd(a),
		newAskCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(logOut io.Writer) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
	}
	if a.logFormat != "" {
		cfg.Log.Format = strings.ToLower(a.logFormat)
	}
	if a.driver != "" {
		cfg.Store.Driver = a.driver
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	log, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	a.cfg = cfg
	a.log = log
	return nil
}

func writeOutput(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
