package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/observability"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-resolve locations and hints over the stored corpus",
	Long:  "Re-run location resolution and description hint extraction over every stored posting. Only postings whose derived fields change are rewritten.",
	RunE:  runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	d, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.runner.Backfill(cmd.Context())
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintBackfillReport(report)
	return nil
}
