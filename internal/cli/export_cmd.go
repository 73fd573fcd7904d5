package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ordermetrics/internal/exporter"
	"ordermetrics/internal/validation"
	"ordermetrics/pkg/contracts/domain"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		groupBy string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the sales metrics of a local order items CSV to CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			report, err := buildReport(cmd.Context(), opts, args[0], domain.GroupBy(groupBy))
			if err != nil {
				return err
			}

			if out == "" {
				out = exporter.FileName(fileStem(args[0]), report.GroupBy, exportFormat)
			}

			if err := validation.NewFileValidator(opts.logger).ValidateOutputFile(out, string(exportFormat)); err != nil {
				return err
			}

			if err := exporter.New(opts.logger).ExportFile(out, exportFormat, report); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"status": "ok",
					"path":   out,
					"format": string(exportFormat),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d periods to %s\n", len(report.Metrics), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&groupBy, "groupby", "g", string(domain.GroupByMonth), "Grouping unit (month, year)")
	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "Export format (csv, xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default metrics_<name>_<groupby>.<format>)")

	return cmd
}
