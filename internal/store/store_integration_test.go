//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

func getTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	// Clean up test data before each test
	_, _ = s.pool.Exec(ctx, "DELETE FROM job_postings WHERE url LIKE '%test.example.com%'")
	_, _ = s.pool.Exec(ctx, "DELETE FROM scrape_queue WHERE url LIKE '%test.example.com%'")

	return s
}

func testPosting(suffix string) *types.JobPosting {
	return &types.JobPosting{
		ID:         uuid.New(),
		Title:      "Backend Engineer",
		Company:    "Test Corp",
		CompanyKey: "testcorp",
		URL:        "https://test.example.com/jobs/" + suffix,
		ScrapedAt:  time.Now().UnixMilli(),
		Engineer:   true,
	}
}

func TestIntegration_Posting_UpsertAndGet(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	job := testPosting(uuid.New().String())
	job.TotalCompensation = 150000
	job.CurrencyCode = "USD"

	id, err := s.UpsertPosting(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, job.ID, id)

	got, err := s.GetPosting(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.Title, got.Title)
	assert.Equal(t, 150000, got.TotalCompensation)

	// Re-upserting the same URL keeps the stored ID.
	dup := testPosting("")
	dup.URL = job.URL
	dup.ScrapedAt = job.ScrapedAt + 1000
	id2, err := s.UpsertPosting(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err = s.GetPosting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dup.ScrapedAt, got.ScrapedAt)
}

func TestIntegration_Posting_UpsertKeepsKnownCompensation(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	job := testPosting(uuid.New().String())
	job.TotalCompensation = 180000
	job.CurrencyCode = "USD"
	id, err := s.UpsertPosting(ctx, job)
	require.NoError(t, err)

	// A later scrape without salary data must not erase the known figure.
	rescrape := testPosting("")
	rescrape.URL = job.URL
	rescrape.CompensationUnknown = true
	_, err = s.UpsertPosting(ctx, rescrape)
	require.NoError(t, err)

	got, err := s.GetPosting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 180000, got.TotalCompensation)
	assert.False(t, got.CompensationUnknown)
}

func TestIntegration_Posting_GetMissingReturnsNil(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()

	got, err := s.GetPosting(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_Posting_PageOrder(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	base := time.Now().UnixMilli()
	for i := 0; i < 5; i++ {
		job := testPosting(uuid.New().String())
		job.ScrapedAt = base + int64(i*1000)
		_, err := s.UpsertPosting(ctx, job)
		require.NoError(t, err)
	}

	page, token, err := s.PagePostings(ctx, "", 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.NotEmpty(t, token)
	for i := 1; i < len(page); i++ {
		assert.GreaterOrEqual(t, page[i-1].ScrapedAt, page[i].ScrapedAt)
	}
}

func TestIntegration_Posting_KeysetPageStableUnderInsert(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	base := time.Now().UnixMilli()
	ids := make(map[uuid.UUID]bool)
	for i := 0; i < 6; i++ {
		job := testPosting(uuid.New().String())
		job.ScrapedAt = base + int64(i*1000)
		id, err := s.UpsertPosting(ctx, job)
		require.NoError(t, err)
		ids[id] = true
	}

	first, token, err := s.PagePostings(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// A fresh scrape lands ahead of everything already read.
	fresh := testPosting(uuid.New().String())
	fresh.ScrapedAt = base + 100000
	_, err = s.UpsertPosting(ctx, fresh)
	require.NoError(t, err)

	seen := make(map[uuid.UUID]bool)
	for _, p := range first {
		seen[p.ID] = true
	}
	for {
		batch, next, err := s.PagePostings(ctx, token, 3)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, p := range batch {
			assert.False(t, seen[p.ID], "posting repeated after a front insert")
			seen[p.ID] = true
		}
		token = next
	}
	for id := range ids {
		assert.True(t, seen[id], "posting dropped after a front insert")
	}
}

func TestIntegration_Detail_MergeOnRead(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	job := testPosting(uuid.New().String())
	job.Description = "short teaser"
	id, err := s.UpsertPosting(ctx, job)
	require.NoError(t, err)

	err = s.SaveDetail(ctx, &types.JobDetail{
		PostingID:   id,
		Description: "full description from the detail scrape",
		Metadata:    map[string]any{"provider": "greenhouse"},
	})
	require.NoError(t, err)

	got, err := s.GetPostingWithDetail(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "full description from the detail scrape", got.Description)
}

func TestIntegration_Queue_Lifecycle(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	entry := &types.ScrapeQueueEntry{
		URL:      "https://test.example.com/jobs/" + uuid.New().String(),
		Provider: "greenhouse",
	}
	id, err := s.EnqueueScrape(ctx, entry)
	require.NoError(t, err)

	claimed, err := s.ClaimPending(ctx, 10)
	require.NoError(t, err)
	var mine *types.ScrapeQueueEntry
	for _, e := range claimed {
		if e.ID == id {
			mine = e
		}
	}
	require.NotNil(t, mine, "enqueued entry should be claimable")
	assert.Equal(t, types.QueueStatusProcessing, mine.Status)
	assert.Equal(t, 1, mine.Attempts)

	require.NoError(t, s.CompleteEntry(ctx, id))
	got, err := s.GetQueueEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.QueueStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestIntegration_Queue_SweepRemovesCompleted(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	entry := &types.ScrapeQueueEntry{URL: "https://test.example.com/jobs/" + uuid.New().String()}
	id, err := s.EnqueueScrape(ctx, entry)
	require.NoError(t, err)
	require.NoError(t, s.InvalidateEntry(ctx, id, "listing page"))

	removed, err := s.SweepStale(ctx, types.StaleQueueAge)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	got, err := s.GetQueueEntry(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_Summaries_ReplaceIdempotent(t *testing.T) {
	s := getTestStore(t)
	defer s.Close()
	ctx := context.Background()

	summaries := []*types.CompanySummary{
		{Key: "testcorp", Name: "Test Corp", Count: 3, CurrencyCode: "USD", AvgCompensationSenior: 200000},
	}
	inserted, _, err := s.ReplaceSummaries(ctx, summaries)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, deleted, err := s.ReplaceSummaries(ctx, summaries)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.GreaterOrEqual(t, deleted, 1)

	got, err := s.GetSummary(ctx, "testcorp")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, 200000, got.AvgCompensationSenior)
}
