// Package cli implements the ordermetrics command line tool, which runs the
// classification and aggregation pipeline on local CSV files.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ordermetrics/internal/config"
	"ordermetrics/internal/dataprocessing"
	"ordermetrics/internal/infrastructure"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	output     string
	encodings  []string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if output, _ := rootCmd.PersistentFlags().GetString("output"); output == outputJSON {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Order items CSV classification and sales metrics",
		Long:          "Classifies the rows of a local order items CSV file and aggregates sales metrics by month or year.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != outputTable && opts.output != outputJSON {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", opts.output)
			}
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.encodings, "encodings", nil, "Encodings to try in order (default from configuration)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	rootCmd.AddCommand(newClassifyCmd(opts))
	rootCmd.AddCommand(newMetricsCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// load resolves configuration and builds a logger writing to stderr
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return err
	}
	if len(o.encodings) > 0 {
		for _, enc := range o.encodings {
			if !dataprocessing.SupportedEncoding(enc) {
				return fmt.Errorf("unsupported encoding: %q", enc)
			}
		}
		cfg.Ingest.Encodings = o.encodings
	}

	logging := cfg.Logging
	logging.Output = "console"
	logging.Format = "text"
	logging.Level = "warn"
	if o.verbose {
		logging.Level = "debug"
	}

	logger, err := infrastructure.NewLogger(logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
