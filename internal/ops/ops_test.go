package ops

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

type fakeStore struct {
	postings  []*types.JobPosting
	details   map[uuid.UUID]string
	updated   []*types.JobPosting
	summaries []*types.CompanySummary
	swept     int
}

func (f *fakeStore) PagePostings(_ context.Context, token string, limit int) ([]*types.JobPosting, string, error) {
	start := 0
	if token != "" {
		for i, p := range f.postings {
			if p.ID.String() == token {
				start = i + 1
				break
			}
		}
	}
	if start >= len(f.postings) {
		return nil, token, nil
	}
	end := start + limit
	if end > len(f.postings) {
		end = len(f.postings)
	}
	batch := f.postings[start:end]
	return batch, batch[len(batch)-1].ID.String(), nil
}

func (f *fakeStore) GetPostingWithDetail(_ context.Context, id uuid.UUID) (*types.JobPosting, error) {
	for _, p := range f.postings {
		if p.ID == id {
			merged := *p
			if desc, ok := f.details[id]; ok {
				merged.Description = desc
			}
			return &merged, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdatePosting(_ context.Context, job *types.JobPosting) error {
	f.updated = append(f.updated, job)
	for i, p := range f.postings {
		if p.ID == job.ID {
			f.postings[i] = job
		}
	}
	return nil
}

func (f *fakeStore) ReplaceSummaries(_ context.Context, summaries []*types.CompanySummary) (int, int, error) {
	deleted := len(f.summaries)
	f.summaries = summaries
	return len(summaries), deleted, nil
}

func (f *fakeStore) SweepStale(_ context.Context, _ time.Duration) (int, error) {
	return f.swept, nil
}

func TestRecompute_BuildsSummaries(t *testing.T) {
	store := &fakeStore{postings: []*types.JobPosting{
		{ID: uuid.New(), Company: "Acme", CompanyKey: "acme", Level: types.LevelSenior,
			TotalCompensation: 200000, CurrencyCode: "USD", Title: "Engineer"},
		{ID: uuid.New(), Company: "Globex", CompanyKey: "globex", CompensationUnknown: true, Title: "Engineer"},
	}}

	r := NewRunner(store, false)
	report, err := r.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Postings)
	assert.Equal(t, 2, report.Companies)
	assert.Equal(t, 2, report.Inserted)
	assert.Zero(t, report.Deleted)
	require.Len(t, store.summaries, 2)
	assert.Equal(t, "acme", store.summaries[0].Key)
	assert.Equal(t, 200000, store.summaries[0].AvgCompensationSenior)
}

func TestRecompute_ReportsClearedRows(t *testing.T) {
	store := &fakeStore{postings: []*types.JobPosting{
		{ID: uuid.New(), Company: "Acme", CompanyKey: "acme", Title: "Engineer", CompensationUnknown: true},
	}}

	r := NewRunner(store, false)
	_, err := r.Recompute(context.Background())
	require.NoError(t, err)

	report, err := r.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Deleted)
}

func TestBackfill_ResolvesRawLocations(t *testing.T) {
	job := &types.JobPosting{
		ID:        uuid.New(),
		Title:     "Engineer",
		Locations: []string{"Denver, CO"},
		Level:     types.LevelMid,
	}
	store := &fakeStore{postings: []*types.JobPosting{job}}

	r := NewRunner(store, false)
	report, err := r.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "Denver, Colorado", store.updated[0].Location)
}

func TestBackfill_ExtractsHintsFromStoredDetail(t *testing.T) {
	job := &types.JobPosting{
		ID:                  uuid.New(),
		Title:               "Engineer",
		Level:               types.LevelMid,
		Locations:           []string{"Denver, Colorado"},
		Location:            "Denver, Colorado",
		CompensationUnknown: true,
	}
	store := &fakeStore{
		postings: []*types.JobPosting{job},
		details: map[uuid.UUID]string{
			job.ID: "Great role. Salary range: $150,000 - $190,000 per year.",
		},
	}

	r := NewRunner(store, false)
	report, err := r.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, store.updated, 1)
	assert.False(t, store.updated[0].CompensationUnknown)
	assert.Equal(t, 170000, store.updated[0].TotalCompensation)
}

func TestBackfill_ResolvedPostingsUntouched(t *testing.T) {
	job := &types.JobPosting{
		ID:    uuid.New(),
		Title: "Engineer",
		Level: types.LevelMid,
	}
	store := &fakeStore{postings: []*types.JobPosting{job}}

	r := NewRunner(store, false)
	// First pass settles the posting; the second must be a no-op.
	_, err := r.Backfill(context.Background())
	require.NoError(t, err)
	firstUpdates := len(store.updated)

	report, err := r.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, firstUpdates, len(store.updated))
	assert.Zero(t, report.Updated)
}

func TestSweep_ReportsRemoved(t *testing.T) {
	r := NewRunner(&fakeStore{swept: 7}, false)
	report, err := r.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, report.Removed)
}
