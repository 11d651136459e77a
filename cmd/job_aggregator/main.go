// Package main provides the entry point for the job aggregator CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_aggregator",
	Short: "Job postings aggregation engine",
	Long:  "job_aggregator ingests scraped job postings, normalizes and enriches them, and serves a grouped, filtered, cursor-paginated job feed over REST.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
