package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "Classify the rows of a local order items CSV",
		Long:  "Decodes the file, sorts every data line into a row class and prints the processing summary.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := classifyFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}

			summary := file.Summary
			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			rows := summary.Rows
			return printTable(cmd.OutOrStdout(), []string{"ROWS", "COUNT"}, [][]string{
				{"total", strconv.Itoa(rows.Total)},
				{"blank", strconv.Itoa(rows.Blank)},
				{"structural_errors", strconv.Itoa(rows.StructuralErrors)},
				{"sanitised", strconv.Itoa(rows.Sanitised)},
				{"malformed", strconv.Itoa(rows.Malformed)},
				{"valid", strconv.Itoa(rows.Valid)},
				{"duplicated", strconv.Itoa(rows.Duplicated)},
				{"usable", strconv.Itoa(rows.Usable)},
				{"accepted", strconv.Itoa(summary.Outcome.Accepted)},
				{"rejected", strconv.Itoa(summary.Outcome.Rejected)},
			})
		},
	}
}
