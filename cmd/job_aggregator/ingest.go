package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/observability"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <payload.json>",
	Short: "Ingest a scrape payload file",
	Long:  "Run the intake pipeline over a scrape payload from disk: normalize records, apply hints, and store the postings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read payload file: %w", err)
	}

	d, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.pipeline.Run(cmd.Context(), payload)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintIngestReport(report)
	return nil
}
