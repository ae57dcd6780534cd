package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/tabrecon/internal/config"
	"github.com/tordrt/tabrecon/internal/formatter"
	"github.com/tordrt/tabrecon/internal/logging"
)

// app holds the settings shared by every subcommand.
type app struct {
	cfg config.Config

	envFile     string
	dbURL       string
	apiKey      string
	restSchema  string
	logLevel    string
	logJSON     bool
	format      string
	outputFile  string
	probeColumn string
	concurrency int
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tabrecon",
		Short: "Discover table schemas and reconcile tabular records",
		Long: `tabrecon probes tables through ordinary selects and inserts to find out whether they exist and
what columns they have, then counts, groups and reconciles records from those tables or from
CSV and XLSX exports.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	pf.StringVar(&a.dbURL, "db-url", "", "Store URL: postgres://, mysql://, sqlite://, sqlserver:// or https:// (env TABRECON_DB_URL)")
	pf.StringVar(&a.apiKey, "api-key", "", "API key for REST stores (env TABRECON_API_KEY)")
	pf.StringVar(&a.restSchema, "rest-schema", "", "Schema profile for REST stores (env TABRECON_REST_SCHEMA)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (env TABRECON_LOG_LEVEL)")
	pf.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON (env TABRECON_LOG_FORMAT=json)")
	pf.StringVarP(&a.format, "format", "f", "text", "Output format: text, markdown or json")
	pf.StringVarP(&a.outputFile, "output", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(
		newProbeCmd(a),
		newCountCmd(a),
		newUniqueCmd(a),
		newGroupCmd(a),
		newMissingCmd(a),
	)
	return rootCmd
}

// setup resolves configuration: .env file, then environment, then flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}
	a.cfg = config.Load()

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		a.cfg.Store.URL = a.dbURL
	}
	if flags.Changed("api-key") {
		a.cfg.Store.APIKey = a.apiKey
	}
	if flags.Changed("rest-schema") {
		a.cfg.Store.RESTSchema = a.restSchema
	}
	if flags.Changed("log-level") {
		a.cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-json") {
		a.cfg.Log.JSON = a.logJSON
	}
	if flags.Changed("probe-column") {
		a.cfg.Probe.Column = a.probeColumn
	}
	if flags.Changed("concurrency") {
		a.cfg.Probe.Concurrency = a.concurrency
	}

	logging.Init(a.cfg.Log.JSON, logging.ParseLevel(a.cfg.Log.Level))
	return nil
}

// output opens the report destination. The returned func closes it.
func (a *app) output(cmd *cobra.Command) (io.Writer, func(), error) {
	if a.outputFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	f, err := os.Create(a.outputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}, nil
}

// formatter opens the report destination and wraps it in the selected format.
func (a *app) formatter(cmd *cobra.Command) (formatter.Formatter, func(), error) {
	w, closeFn, err := a.output(cmd)
	if err != nil {
		return nil, nil, err
	}
	f, err := formatter.New(a.format, w)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return f, closeFn, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
