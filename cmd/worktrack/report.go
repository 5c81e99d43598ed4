package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actionsum/worktrack/internal/reporter"
)

var (
	reportJSON  bool
	reportReset bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show per-app usage forwarded during this agent run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := controlClient()
		if err != nil {
			return err
		}
		report, err := c.Summary(cmd.Context())
		if err != nil {
			return err
		}
		if reportReset {
			if err := c.ResetSummary(cmd.Context()); err != nil {
				return err
			}
		}

		if reportJSON {
			out, err := reporter.FormatReportJSON(report)
			if err != nil {
				return fmt.Errorf("failed to format JSON: %w", err)
			}
			fmt.Println(out)
			return nil
		}
		fmt.Println(reporter.FormatReportText(report))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	reportCmd.Flags().BoolVar(&reportReset, "reset", false, "Clear the summary after printing it")
	rootCmd.AddCommand(reportCmd)
}
