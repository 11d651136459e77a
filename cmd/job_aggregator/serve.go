package main

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/scrape"
	"github.com/jonathan/job-aggregator/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start the HTTP server, the scrape worker pool, and the periodic recompute and sweep jobs.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := connect(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	port := d.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	// Periodic jobs: hourly rollup recompute, nightly queue sweep.
	schedule := cron.New()
	if _, err := schedule.AddFunc(d.cfg.RecomputeSchedule, func() {
		if _, err := d.runner.Recompute(context.Background()); err != nil {
			log.Printf("Scheduled recompute failed: %v", err)
		}
	}); err != nil {
		return err
	}
	if _, err := schedule.AddFunc(d.cfg.SweepSchedule, func() {
		if _, err := d.runner.Sweep(context.Background()); err != nil {
			log.Printf("Scheduled sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}
	schedule.Start()
	defer schedule.Stop()

	// Scrape workers drain the queue in the background.
	if d.cfg.ScrapeWorkers > 0 {
		worker := scrape.New(d.store, nil, scrape.Options{
			Workers:    d.cfg.ScrapeWorkers,
			UseBrowser: d.cfg.UseBrowser,
			Verbose:    d.cfg.Verbose,
		})
		go func() {
			if err := worker.RunLoop(ctx, 15*time.Second); err != nil && ctx.Err() == nil {
				log.Printf("Scrape worker stopped: %v", err)
			}
		}()
	}

	srv := server.New(server.Config{
		Port:          port,
		WebhookSecret: d.cfg.WebhookSecret,
		JWTSecret:     d.cfg.JWTSecret,
		JWTExpiration: time.Duration(d.cfg.JWTExpirationHours) * time.Hour,
	}, d.store, d.pipeline, d.runner)

	return srv.Start()
}
