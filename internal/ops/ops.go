// Package ops implements the maintenance operations shared by the CLI, the
// cron schedule, and the admin endpoints.
package ops

import (
	"context"
	"log"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/summary"
	"github.com/jonathan/job-aggregator/internal/types"
)

// batchSize is how many postings a full-corpus walk reads per query.
const batchSize = 500

// Storer is the persistence surface the operations need.
type Storer interface {
	PagePostings(ctx context.Context, token string, limit int) ([]*types.JobPosting, string, error)
	GetPostingWithDetail(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
	UpdatePosting(ctx context.Context, job *types.JobPosting) error
	ReplaceSummaries(ctx context.Context, summaries []*types.CompanySummary) (inserted, deleted int, err error)
	SweepStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// Runner executes maintenance operations against a store.
type Runner struct {
	store   Storer
	dict    *geo.Dictionary
	verbose bool
}

// NewRunner creates a Runner.
func NewRunner(store Storer, verbose bool) *Runner {
	return &Runner{store: store, dict: geo.Default(), verbose: verbose}
}

// RecomputeReport summarizes one summary rebuild. The rebuild replaces the
// rollup table wholesale, so Deleted counts the rows the previous run left
// and Inserted the rows this run wrote.
type RecomputeReport struct {
	Postings  int `json:"postings"`
	Companies int `json:"companies"`
	Inserted  int `json:"inserted"`
	Deleted   int `json:"deleted"`
}

// Recompute rebuilds the company rollup table from the full corpus. The
// rebuild replaces the table wholesale, so running it twice is a no-op.
func (r *Runner) Recompute(ctx context.Context) (*RecomputeReport, error) {
	postings, err := r.walkCorpus(ctx)
	if err != nil {
		return nil, err
	}

	summaries := summary.Build(postings)
	inserted, deleted, err := r.store.ReplaceSummaries(ctx, summaries)
	if err != nil {
		return nil, err
	}

	report := &RecomputeReport{
		Postings:  len(postings),
		Companies: len(summaries),
		Inserted:  inserted,
		Deleted:   deleted,
	}
	if r.verbose {
		log.Printf("[VERBOSE] recompute: %d postings into %d company summaries (inserted=%d deleted=%d)",
			report.Postings, report.Companies, report.Inserted, report.Deleted)
	}
	return report, nil
}

// BackfillReport summarizes one location backfill pass.
type BackfillReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// Backfill re-runs location resolution and hint enrichment over the stored
// corpus. Resolution is a fixed point, so only postings that predate a
// dictionary or resolver change actually rewrite.
func (r *Runner) Backfill(ctx context.Context) (*BackfillReport, error) {
	report := &BackfillReport{}
	for token := ""; ; {
		batch, next, err := r.store.PagePostings(ctx, token, batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for _, job := range batch {
			report.Scanned++

			// Posting rows do not carry the description; pull the stored
			// detail in so the hint extractor has text to work with.
			if job.Description == "" {
				detailed, err := r.store.GetPostingWithDetail(ctx, job.ID)
				if err != nil {
					return report, err
				}
				if detailed != nil {
					job = detailed
				}
			}

			before := snapshot(job)
			geo.ResolvePosting(r.dict, job)
			ingest.Enrich(r.dict, job)
			if reflect.DeepEqual(before, snapshot(job)) {
				continue
			}
			if err := r.store.UpdatePosting(ctx, job); err != nil {
				return report, err
			}
			report.Updated++
		}

		if len(batch) < batchSize {
			break
		}
		token = next
	}

	if r.verbose {
		log.Printf("[VERBOSE] backfill: scanned=%d updated=%d", report.Scanned, report.Updated)
	}
	return report, nil
}

// SweepReport summarizes one queue sweep.
type SweepReport struct {
	Removed int `json:"removed"`
}

// Sweep purges finished and stale scrape queue entries.
func (r *Runner) Sweep(ctx context.Context) (*SweepReport, error) {
	removed, err := r.store.SweepStale(ctx, types.StaleQueueAge)
	if err != nil {
		return nil, err
	}
	if r.verbose {
		log.Printf("[VERBOSE] sweep: removed %d queue entries", removed)
	}
	return &SweepReport{Removed: removed}, nil
}

// walkCorpus reads every posting in batches.
func (r *Runner) walkCorpus(ctx context.Context) ([]*types.JobPosting, error) {
	var all []*types.JobPosting
	for token := ""; ; {
		batch, next, err := r.store.PagePostings(ctx, token, batchSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < batchSize {
			return all, nil
		}
		token = next
	}
}

// fieldsSnapshot captures the mutable derived fields for change detection.
type fieldsSnapshot struct {
	location string
	country  string
	search   string
	level    types.Level
	remote   *bool
	comp     int
	id       uuid.UUID
	locs     []string
}

func snapshot(job *types.JobPosting) fieldsSnapshot {
	return fieldsSnapshot{
		location: job.Location,
		country:  job.Country,
		search:   job.LocationSearch,
		level:    job.Level,
		remote:   job.Remote,
		comp:     job.TotalCompensation,
		id:       job.ID,
		locs:     append([]string(nil), job.Locations...),
	}
}
