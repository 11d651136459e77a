package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/job-aggregator/internal/config"
	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/ops"
	"github.com/jonathan/job-aggregator/internal/store"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

// loadConfig builds the effective configuration: environment first, config
// file for the gaps.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deps holds the connected backends a command runs against.
type deps struct {
	cfg      *config.Config
	store    *store.Store
	dispatch *store.Dispatch
	pipeline *ingest.Pipeline
	runner   *ops.Runner
}

// connect opens the store (and Redis when configured) and wires the
// pipeline and runner on top.
func connect(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	d := &deps{cfg: cfg, store: st}
	if cfg.RedisURL != "" {
		dispatch, err := store.ConnectDispatch(ctx, cfg.RedisURL)
		if err != nil {
			st.Close()
			return nil, err
		}
		d.dispatch = dispatch
	}

	var dispatcher ingest.Dispatcher
	if d.dispatch != nil {
		dispatcher = d.dispatch
	}
	d.pipeline = ingest.New(st, dispatcher, cfg.Verbose)
	d.runner = ops.NewRunner(st, cfg.Verbose)
	return d, nil
}

func (d *deps) close() {
	if d.dispatch != nil {
		if err := d.dispatch.Close(); err != nil {
			log.Printf("Error closing redis: %v", err)
		}
	}
	d.store.Close()
}
