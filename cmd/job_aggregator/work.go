package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/scrape"
)

var workOnce bool

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run the scrape worker pool",
	Long:  "Drain the scrape queue: fetch each queued detail page, clean it, and store the resulting posting.",
	RunE:  runWork,
}

func init() {
	workCmd.Flags().BoolVar(&workOnce, "once", false, "Process one batch and exit")
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, _ []string) error {
	d, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer d.close()

	worker := scrape.New(d.store, nil, scrape.Options{
		Workers:    d.cfg.ScrapeWorkers,
		UseBrowser: d.cfg.UseBrowser,
		Verbose:    d.cfg.Verbose,
	})

	if workOnce {
		_, err := worker.RunOnce(cmd.Context())
		return err
	}
	return worker.RunLoop(cmd.Context(), 15*time.Second)
}
