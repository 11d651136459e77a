// Package ingest runs the intake pipeline: payload in, enriched postings in
// the store, discovered scrape targets queued.
package ingest

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/extract"
	"github.com/jonathan/job-aggregator/internal/fetch"
	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/hints"
	"github.com/jonathan/job-aggregator/internal/types"
)

// ReasonParsedDescription marks compensation recovered from description
// text rather than structured provider fields.
const ReasonParsedDescription = "parsed from description"

// Storer is the persistence surface the pipeline writes to.
type Storer interface {
	UpsertPosting(ctx context.Context, job *types.JobPosting) (uuid.UUID, error)
	SaveDetail(ctx context.Context, detail *types.JobDetail) error
	EnqueueScrape(ctx context.Context, entry *types.ScrapeQueueEntry) (uuid.UUID, error)
}

// Dispatcher hands scrape work to the worker pool. Optional; without one,
// entries still land in the durable queue.
type Dispatcher interface {
	MarkSeen(ctx context.Context, url string) (bool, error)
	Push(ctx context.Context, entry *types.ScrapeQueueEntry) error
}

// Report summarizes one pipeline run.
type Report struct {
	Received int
	Stored   int
	Skipped  int
	Enqueued int
	Errors   []string
}

// Pipeline wires the normalizer, hint extractor, and store together.
type Pipeline struct {
	store    Storer
	dispatch Dispatcher
	dict     *geo.Dictionary
	verbose  bool
}

// New creates a pipeline. dispatch may be nil.
func New(store Storer, dispatch Dispatcher, verbose bool) *Pipeline {
	return &Pipeline{
		store:    store,
		dispatch: dispatch,
		dict:     geo.Default(),
		verbose:  verbose,
	}
}

// Run ingests one raw scrape payload. Individual record failures are
// recorded in the report and never abort the run.
func (p *Pipeline) Run(ctx context.Context, raw []byte) (*Report, error) {
	payload, err := extract.ParsePayload(raw, p.verbose)
	if err != nil {
		return nil, err
	}

	report := &Report{Received: len(payload.Records)}
	jobs := extract.ExtractJobs(p.dict, payload, time.Now(), p.verbose)
	report.Skipped = report.Received - len(jobs)

	for _, job := range jobs {
		Enrich(p.dict, job)

		id, err := p.store.UpsertPosting(ctx, job)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Stored++

		if job.Description != "" {
			detail := &types.JobDetail{PostingID: id, Description: job.Description}
			if err := p.store.SaveDetail(ctx, detail); err != nil {
				report.Errors = append(report.Errors, err.Error())
			}
		} else if queued, err := p.enqueueDetail(ctx, job); err != nil {
			report.Errors = append(report.Errors, err.Error())
		} else if queued {
			report.Enqueued++
		}
	}

	if p.verbose {
		log.Printf("[VERBOSE] ingest: received=%d stored=%d skipped=%d enqueued=%d errors=%d",
			report.Received, report.Stored, report.Skipped, report.Enqueued, len(report.Errors))
	}
	return report, nil
}

// enqueueDetail queues a detail-page scrape for a posting that arrived
// without a description. Returns false when the seen-set suppressed the
// enqueue because the URL was already dispatched.
func (p *Pipeline) enqueueDetail(ctx context.Context, job *types.JobPosting) (bool, error) {
	if p.dispatch != nil {
		fresh, err := p.dispatch.MarkSeen(ctx, job.URL)
		if err != nil {
			return false, err
		}
		if !fresh {
			return false, nil
		}
	}

	entry := &types.ScrapeQueueEntry{
		ID:       uuid.New(),
		URL:      job.URL,
		Provider: string(fetch.DetectProvider(job.URL)),
	}
	if _, err := p.store.EnqueueScrape(ctx, entry); err != nil {
		return false, err
	}
	if p.dispatch != nil {
		if err := p.dispatch.Push(ctx, entry); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Enrich applies markdown hints from the description to a posting. Fields
// the normalizer already filled from structured data are left alone; hints
// only cover the gaps. Re-running on an already-enriched posting changes
// nothing.
func Enrich(dict *geo.Dictionary, job *types.JobPosting) {
	if job.Description == "" {
		if job.Level == "" {
			job.Level = types.LevelMid
		}
		return
	}

	h := hints.Extract(dict, job.Description)

	if job.Title == "" && h.Title != "" {
		job.Title = h.Title
	}
	if job.Level == "" {
		if h.Level != "" {
			job.Level = h.Level
		} else {
			job.Level = types.LevelMid
		}
	}
	if job.Remote == nil && h.Remote != nil {
		job.Remote = h.Remote
	}

	if locationUnknown(job) && len(h.Locations) > 0 {
		job.Locations = h.Locations
		job.Location = ""
		geo.ResolvePosting(dict, job)
	}

	if job.CompensationUnknown && h.Compensation > 0 {
		job.TotalCompensation = h.Compensation
		job.CompensationUnknown = false
		job.CompensationReason = ReasonParsedDescription
	}
}

func locationUnknown(job *types.JobPosting) bool {
	if len(job.Locations) == 0 {
		return true
	}
	return len(job.Locations) == 1 && job.Locations[0] == types.UnknownSentinel
}
