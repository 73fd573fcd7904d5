package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ordermetrics/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutput(cmd) == outputJSON {
				return printJSON(cmd.OutOrStdout(), contracts.GetVersionInfo())
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (commit: %s)\n", contracts.GetVersionString(), contracts.GitCommit)
			return nil
		},
	}
}

// getOutput returns the effective output format from the root command's persistent flags
func getOutput(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}
