package scrape

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

type fakeStore struct {
	pending   []*types.ScrapeQueueEntry
	completed []uuid.UUID
	failed    map[uuid.UUID]string
	invalid   map[uuid.UUID]string
	existing  map[string]*types.JobPosting
	upserted  []*types.JobPosting
	details   []*types.JobDetail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failed:   make(map[uuid.UUID]string),
		invalid:  make(map[uuid.UUID]string),
		existing: make(map[string]*types.JobPosting),
	}
}

func (f *fakeStore) ClaimPending(_ context.Context, limit int) ([]*types.ScrapeQueueEntry, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	claimed := f.pending[:limit]
	f.pending = f.pending[limit:]
	return claimed, nil
}

func (f *fakeStore) CompleteEntry(_ context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeStore) FailEntry(_ context.Context, id uuid.UUID, cause string) error {
	f.failed[id] = cause
	return nil
}

func (f *fakeStore) InvalidateEntry(_ context.Context, id uuid.UUID, cause string) error {
	f.invalid[id] = cause
	return nil
}

func (f *fakeStore) GetPostingByURL(_ context.Context, url string) (*types.JobPosting, error) {
	return f.existing[url], nil
}

func (f *fakeStore) UpsertPosting(_ context.Context, job *types.JobPosting) (uuid.UUID, error) {
	f.upserted = append(f.upserted, job)
	return job.ID, nil
}

func (f *fakeStore) SaveDetail(_ context.Context, detail *types.JobDetail) error {
	f.details = append(f.details, detail)
	return nil
}

type fakeFetcher struct {
	pages map[string]string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

func (f *fakeFetcher) Render(_ context.Context, url string) (string, error) {
	return f.pages[url], nil
}

const postingHTML = `<html><body><main>
<h1>Senior Platform Engineer</h1>
<p>Austin, TX</p>
<p>We run the infrastructure. Fully remote within the US.</p>
<p>Compensation: $170,000 - $190,000 USD.</p>
</main></body></html>`

func entry(url string) *types.ScrapeQueueEntry {
	return &types.ScrapeQueueEntry{ID: uuid.New(), URL: url}
}

func TestRunOnce_ScrapesAndStoresPosting(t *testing.T) {
	store := newFakeStore()
	url := "https://jobs.lever.co/acme/1"
	e := entry(url)
	store.pending = []*types.ScrapeQueueEntry{e}

	w := New(store, &fakeFetcher{pages: map[string]string{url: postingHTML}}, Options{})
	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, store.upserted, 1)
	job := store.upserted[0]
	assert.Equal(t, "Senior Platform Engineer", job.Title)
	assert.Equal(t, types.LevelSenior, job.Level)
	assert.Equal(t, "Austin, Texas", job.Location)
	assert.Equal(t, 180000, job.TotalCompensation)
	assert.True(t, job.Engineer)
	assert.Equal(t, "Acme", job.Company)

	require.Len(t, store.details, 1)
	assert.Contains(t, store.completed, e.ID)
}

func TestRunOnce_ExistingPostingKeepsIdentity(t *testing.T) {
	store := newFakeStore()
	url := "https://jobs.lever.co/acme/1"
	existing := &types.JobPosting{
		ID:                  uuid.New(),
		Title:               "Senior Platform Engineer",
		Company:             "Acme Labs",
		CompanyKey:          "acmelabs",
		URL:                 url,
		CompensationUnknown: true,
	}
	store.existing[url] = existing
	store.pending = []*types.ScrapeQueueEntry{entry(url)}

	w := New(store, &fakeFetcher{pages: map[string]string{url: postingHTML}}, Options{})
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	assert.Equal(t, existing.ID, store.upserted[0].ID)
	assert.Equal(t, "Acme Labs", store.upserted[0].Company)
	assert.Equal(t, 180000, store.upserted[0].TotalCompensation)
}

func TestRunOnce_FetchErrorMarksFailed(t *testing.T) {
	store := newFakeStore()
	e := entry("https://jobs.lever.co/acme/2")
	store.pending = []*types.ScrapeQueueEntry{e}

	w := New(store, &fakeFetcher{err: fmt.Errorf("connection refused")}, Options{})
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Contains(t, store.failed[e.ID], "connection refused")
	assert.Empty(t, store.completed)
}

func TestRunOnce_ListingURLInvalidated(t *testing.T) {
	store := newFakeStore()
	e := entry("https://acme.avature.net/careers/SearchJobs")
	store.pending = []*types.ScrapeQueueEntry{e}

	w := New(store, &fakeFetcher{}, Options{})
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, store.invalid[e.ID])
	assert.Empty(t, store.upserted)
}

func TestRunOnce_EmptyPageInvalidated(t *testing.T) {
	store := newFakeStore()
	url := "https://jobs.lever.co/acme/3"
	e := entry(url)
	store.pending = []*types.ScrapeQueueEntry{e}

	w := New(store, &fakeFetcher{pages: map[string]string{url: "<html><body></body></html>"}}, Options{})
	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, store.invalid[e.ID])
}

func TestRunOnce_NothingPending(t *testing.T) {
	w := New(newFakeStore(), &fakeFetcher{}, Options{})
	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
