package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ordermetrics/internal/exporter"
	"ordermetrics/internal/services"
	"ordermetrics/pkg/contracts/domain"
)

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "metrics <file>",
		Short: "Aggregate sales metrics of a local order items CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildReport(cmd.Context(), opts, args[0], domain.GroupBy(groupBy))
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			return printTable(cmd.OutOrStdout(), exporter.ReportHeaders, exporter.ReportRecords(report))
		},
	}

	cmd.Flags().StringVarP(&groupBy, "groupby", "g", string(domain.GroupByMonth), "Grouping unit (month, year)")

	return cmd
}

// buildReport classifies path and aggregates its usable rows
func buildReport(ctx context.Context, opts *rootOptions, path string, groupBy domain.GroupBy) (*domain.MetricsReport, error) {
	if !groupBy.IsValid() {
		return nil, fmt.Errorf("%w: %q", services.ErrInvalidGroupBy, groupBy)
	}

	file, err := classifyFile(ctx, opts, path)
	if err != nil {
		return nil, err
	}

	svc := services.NewMetricsService(nil, services.MetricsOptions{}, opts.logger)
	return svc.Report(ctx, file.Table, file.Summary, groupBy)
}
