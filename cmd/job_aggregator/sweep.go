package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/observability"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge finished and stale scrape queue entries",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	d, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.runner.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintSweepReport(report)
	return nil
}
