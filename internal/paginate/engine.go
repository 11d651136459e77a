package paginate

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-aggregator/internal/company"
	"github.com/jonathan/job-aggregator/internal/grouping"
	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	// DefaultPageSize is the number of grouped rows per page.
	DefaultPageSize = 20

	// maxFetchWindow caps a single underlying fetch no matter how large the
	// requested page is.
	maxFetchWindow = 200

	// carryReadConcurrency bounds parallel point reads when re-validating
	// carried postings.
	carryReadConcurrency = 8
)

// Source is the underlying posting stream the engine pages over. Page
// returns postings in display order resuming after the position the token
// marks, plus the token for the next window; an empty token starts the
// stream and a short page marks its end. Tokens are minted by the source
// and opaque to the engine. Posting is a point read that returns nil, nil
// when the posting no longer exists.
type Source interface {
	Page(ctx context.Context, token string, limit int) ([]*types.JobPosting, string, error)
	Posting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
}

// Request describes one page fetch.
type Request struct {
	Cursor    string
	PageSize  int
	Companies []string
	Aliases   map[string]string
}

// Page is one page of grouped rows plus the resume token for the next.
type Page struct {
	Jobs       []*types.GroupedJob
	NextCursor string
	Done       bool
}

// Engine pages over a Source, filtering and grouping as it goes.
type Engine struct {
	source Source
}

// NewEngine creates a pagination engine over a posting source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Next produces the page the request's cursor points at. Group rows never
// repeat across pages and no matching posting is ever dropped: postings whose
// group straddles the page boundary are carried into the next cursor instead
// of being emitted early.
func (e *Engine) Next(ctx context.Context, req Request) (*Page, error) {
	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if cursor.Done {
		token, err := cursor.Encode()
		if err != nil {
			return nil, err
		}
		return &Page{NextCursor: token, Done: true}, nil
	}

	filterKeys := company.BuildFilterSet(req.Companies)

	carried, err := e.revalidateCarry(ctx, cursor.Carry)
	if err != nil {
		return nil, err
	}

	// Carried postings go back through the predicate too: their fields may
	// have changed since the cursor was minted, and ones that no longer
	// match fall out of the stream just like deleted ones.
	pool := make([]*types.JobPosting, 0, len(carried))
	for _, p := range carried {
		if company.MatchesFilters(p, filterKeys, req.Aliases) {
			pool = append(pool, p)
		}
	}

	// Over-fetch relative to the page size: grouping collapses rows, so a
	// window of raw postings yields fewer grouped rows.
	window := pageSize * 4
	if window > maxFetchWindow {
		window = maxFetchWindow
	}

	raw := cursor.Raw
	exhausted := false
	for {
		groups := grouping.Group(pool)
		if len(groups) > pageSize || exhausted {
			return e.emit(groups, pool, pageSize, raw, exhausted)
		}

		batch, next, err := e.source.Page(ctx, raw, window)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch postings: %w", err)
		}
		if len(batch) > 0 {
			raw = next
		}
		if len(batch) < window {
			exhausted = true
		}

		for _, p := range batch {
			if company.MatchesFilters(p, filterKeys, req.Aliases) {
				pool = append(pool, p)
			}
		}
	}
}

// revalidateCarry re-reads carried postings concurrently. Postings deleted
// since the cursor was minted silently fall out of the stream.
func (e *Engine) revalidateCarry(ctx context.Context, carry []uuid.UUID) ([]*types.JobPosting, error) {
	if len(carry) == 0 {
		return nil, nil
	}

	results := make([]*types.JobPosting, len(carry))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(carryReadConcurrency)

	var mu sync.Mutex
	for i, id := range carry {
		g.Go(func() error {
			p, err := e.source.Posting(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to revalidate carried postings: %w", err)
	}

	pool := make([]*types.JobPosting, 0, len(carry))
	for _, p := range results {
		if p != nil {
			pool = append(pool, p)
		}
	}
	return pool, nil
}

// emit sorts the accumulated groups, takes one page, and folds the remainder
// back into the next cursor as carried posting IDs.
func (e *Engine) emit(groups []*types.GroupedJob, pool []*types.JobPosting, pageSize int, raw string, exhausted bool) (*Page, error) {
	sortGroups(groups)

	page := groups
	var leftover []*types.GroupedJob
	if len(groups) > pageSize {
		page = groups[:pageSize]
		leftover = groups[pageSize:]
	}

	next := &Cursor{Raw: raw}
	if len(leftover) > 0 {
		carried := make(map[uuid.UUID]bool)
		for _, g := range leftover {
			for _, id := range g.GroupedJobIDs {
				carried[id] = true
			}
		}
		// Preserve pool order so the carry replays deterministically.
		for _, p := range pool {
			if carried[p.ID] {
				next.Carry = append(next.Carry, p.ID)
			}
		}
	}
	next.Done = exhausted && len(next.Carry) == 0

	token, err := next.Encode()
	if err != nil {
		return nil, err
	}
	return &Page{Jobs: page, NextCursor: token, Done: next.Done}, nil
}

// sortGroups orders grouped rows by the shared display comparator.
func sortGroups(groups []*types.GroupedJob) {
	postings := make([]*types.JobPosting, len(groups))
	byPosting := make(map[*types.JobPosting]*types.GroupedJob, len(groups))
	for i, g := range groups {
		postings[i] = &g.JobPosting
		byPosting[&g.JobPosting] = g
	}
	types.SortForDisplay(postings)
	for i, p := range postings {
		groups[i] = byPosting[p]
	}
}
