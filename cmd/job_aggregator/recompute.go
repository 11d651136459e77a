package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/observability"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild the company rollup table",
	RunE:  runRecompute,
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	d, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.runner.Recompute(cmd.Context())
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRecomputeReport(report)
	return nil
}
