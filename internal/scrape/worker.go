// Package scrape runs the detail-page worker pool: claim queued URLs, fetch
// and clean the page, and feed the result back through enrichment.
package scrape

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-aggregator/internal/company"
	"github.com/jonathan/job-aggregator/internal/extract"
	"github.com/jonathan/job-aggregator/internal/fetch"
	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/sanitize"
	"github.com/jonathan/job-aggregator/internal/types"
)

// Storer is the persistence surface the worker needs.
type Storer interface {
	ClaimPending(ctx context.Context, limit int) ([]*types.ScrapeQueueEntry, error)
	CompleteEntry(ctx context.Context, id uuid.UUID) error
	FailEntry(ctx context.Context, id uuid.UUID, cause string) error
	InvalidateEntry(ctx context.Context, id uuid.UUID, cause string) error
	GetPostingByURL(ctx context.Context, url string) (*types.JobPosting, error)
	UpsertPosting(ctx context.Context, job *types.JobPosting) (uuid.UUID, error)
	SaveDetail(ctx context.Context, detail *types.JobDetail) error
}

// Fetcher fetches and renders pages. Split out so tests can stub the
// network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Render(ctx context.Context, url string) (string, error)
}

// Options tunes a worker pool.
type Options struct {
	Workers    int
	BatchSize  int
	UseBrowser bool
	Verbose    bool
}

// Worker drains the scrape queue.
type Worker struct {
	store   Storer
	fetcher Fetcher
	dict    *geo.Dictionary
	opts    Options
}

// New creates a worker pool. A nil fetcher gets the default HTTP fetcher.
func New(store Storer, fetcher Fetcher, opts Options) *Worker {
	if fetcher == nil {
		fetcher = &httpFetcher{}
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	return &Worker{store: store, fetcher: fetcher, dict: geo.Default(), opts: opts}
}

// RunOnce claims one batch and processes it with the configured parallelism.
// Returns the number of entries processed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	entries, err := w.store.ClaimPending(ctx, w.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)
	for _, entry := range entries {
		g.Go(func() error {
			w.process(gctx, entry)
			return nil
		})
	}
	_ = g.Wait()
	return len(entries), nil
}

// RunLoop polls until the context is cancelled. Idle polls back off to the
// given interval.
func (w *Worker) RunLoop(ctx context.Context, idle time.Duration) error {
	for {
		n, err := w.RunOnce(ctx)
		if err != nil {
			log.Printf("scrape worker: %v", err)
		}
		if n > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

// process handles one queue entry end to end. Failures mark the entry
// failed; structurally bad URLs mark it invalid so it is never retried.
func (w *Worker) process(ctx context.Context, entry *types.ScrapeQueueEntry) {
	canonical, ok := extract.CanonicalizeURL(entry.URL)
	if !ok || extract.IsExcludedURL(canonical) || extract.IsListingURL(canonical, entry.SourceURL) {
		_ = w.store.InvalidateEntry(ctx, entry.ID, "not a posting detail URL")
		return
	}

	text, err := w.fetchText(ctx, canonical)
	if err != nil {
		_ = w.store.FailEntry(ctx, entry.ID, err.Error())
		return
	}

	job, err := w.buildPosting(ctx, canonical, text)
	if err != nil {
		_ = w.store.FailEntry(ctx, entry.ID, err.Error())
		return
	}
	if job == nil {
		_ = w.store.InvalidateEntry(ctx, entry.ID, "page yielded no posting")
		return
	}

	id, err := w.store.UpsertPosting(ctx, job)
	if err != nil {
		_ = w.store.FailEntry(ctx, entry.ID, err.Error())
		return
	}
	if job.Description != "" {
		detail := &types.JobDetail{PostingID: id, Description: job.Description}
		if err := w.store.SaveDetail(ctx, detail); err != nil {
			_ = w.store.FailEntry(ctx, entry.ID, err.Error())
			return
		}
	}

	if w.opts.Verbose {
		log.Printf("[VERBOSE] scraped %s: %q", canonical, job.Title)
	}
	_ = w.store.CompleteEntry(ctx, entry.ID)
}

// fetchText fetches a page and extracts its main text, falling back to a
// rendered browser when the plain fetch looks like an empty SPA shell.
func (w *Worker) fetchText(ctx context.Context, url string) (string, error) {
	html, err := w.fetcher.Fetch(ctx, url)
	if err != nil && !w.opts.UseBrowser {
		return "", err
	}

	provider := fetch.DetectProvider(url)
	var text string
	if err == nil {
		text, err = fetch.ExtractMainText(html, fetch.ContentSelectors(provider), fetch.NoiseSelectors(provider)...)
		if err != nil {
			return "", err
		}
	}

	if w.opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		rendered, rerr := w.fetcher.Render(ctx, url)
		if rerr != nil {
			if text != "" {
				return text, nil
			}
			return "", rerr
		}
		rtext, rerr := fetch.ExtractMainText(rendered, fetch.ContentSelectors(provider), fetch.NoiseSelectors(provider)...)
		if rerr == nil && len(rtext) > len(text) {
			text = rtext
		}
	}
	return text, nil
}

// buildPosting turns cleaned page text into a posting draft. Existing rows
// for the same URL keep their identity; the scrape only fills gaps.
func (w *Worker) buildPosting(ctx context.Context, url, text string) (*types.JobPosting, error) {
	description := sanitize.CleanText(sanitize.StripInlineJSON(text))
	if sanitize.IsNoiseCard(description) || strings.TrimSpace(description) == "" {
		return nil, nil
	}

	job, err := w.store.GetPostingByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if job == nil {
		name := company.DeriveFromURL(url)
		job = &types.JobPosting{
			ID:                  uuid.New(),
			Company:             name,
			CompanyKey:          company.NormalizeFilterKey(name),
			URL:                 url,
			CompensationUnknown: true,
			ScrapedAt:           time.Now().UnixMilli(),
		}
	} else {
		job.ScrapedAt = time.Now().UnixMilli()
	}

	job.Description = description
	ingest.Enrich(w.dict, job)

	if job.Title == "" {
		title := sanitize.CleanTitle(firstLine(description))
		if title == "" {
			return nil, nil
		}
		job.Title = title
	}
	job.Engineer = extract.IsEngineerTitle(job.Title)
	return job, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

// httpFetcher is the production Fetcher backed by the fetch package.
type httpFetcher struct{}

func (h *httpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	result, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

func (h *httpFetcher) Render(ctx context.Context, url string) (string, error) {
	return fetch.BrowserSimple(ctx, url, false)
}
