package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-aggregator/internal/types"
)

const queueColumns = `id, url, source_url, provider, pattern, status,
	attempts, COALESCE(last_error, ''), created_at, updated_at, completed_at, scheduled_at`

// EnqueueScrape adds a URL to the scrape queue. Re-enqueueing a URL that is
// already queued resets a failed entry to pending and is otherwise a no-op.
// Returns the entry ID.
func (s *Store) EnqueueScrape(ctx context.Context, entry *types.ScrapeQueueEntry) (uuid.UUID, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = types.QueueStatusPending
	}

	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scrape_queue (id, url, source_url, provider, pattern, status, scheduled_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (url) DO UPDATE SET
			status = CASE WHEN scrape_queue.status = 'failed' THEN 'pending' ELSE scrape_queue.status END,
			updated_at = NOW()
		 RETURNING id`,
		entry.ID, entry.URL, entry.SourceURL, entry.Provider, entry.Pattern,
		entry.Status, entry.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue scrape for %s: %w", entry.URL, err)
	}
	return id, nil
}

// ClaimPending atomically moves up to limit pending entries to processing
// and returns them. Concurrent workers never claim the same entry.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]*types.ScrapeQueueEntry, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE scrape_queue SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM scrape_queue
			WHERE status = 'pending'
			  AND (scheduled_at IS NULL OR scheduled_at <= NOW())
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+queueColumns,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending entries: %w", err)
	}
	defer rows.Close()

	return scanQueueEntries(rows)
}

// CompleteEntry marks a processing entry completed.
func (s *Store) CompleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.setEntryStatus(ctx, id, types.QueueStatusCompleted, "")
}

// FailEntry marks an entry failed with the error that stopped it.
func (s *Store) FailEntry(ctx context.Context, id uuid.UUID, cause string) error {
	return s.setEntryStatus(ctx, id, types.QueueStatusFailed, cause)
}

// InvalidateEntry marks an entry invalid; invalid entries are never retried.
func (s *Store) InvalidateEntry(ctx context.Context, id uuid.UUID, cause string) error {
	return s.setEntryStatus(ctx, id, types.QueueStatusInvalid, cause)
}

func (s *Store) setEntryStatus(ctx context.Context, id uuid.UUID, status, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scrape_queue SET
			status = $2,
			last_error = NULLIF($3, ''),
			completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		 WHERE id = $1`,
		id, status, cause,
	)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("queue entry not found: %s", id)
	}
	return nil
}

// GetQueueEntry retrieves one entry by ID. Returns nil, nil when absent.
func (s *Store) GetQueueEntry(ctx context.Context, id uuid.UUID) (*types.ScrapeQueueEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+queueColumns+` FROM scrape_queue WHERE id = $1`, id)

	var e types.ScrapeQueueEntry
	err := row.Scan(&e.ID, &e.URL, &e.SourceURL, &e.Provider, &e.Pattern,
		&e.Status, &e.Attempts, &e.LastError, &e.CreatedAt, &e.UpdatedAt,
		&e.CompletedAt, &e.ScheduledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return &e, nil
}

// QueueCounts returns entry counts by status.
func (s *Store) QueueCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM scrape_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan queue count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// SweepStale purges entries stuck in pending or processing longer than
// maxAge, plus completed and invalid entries of any age. Returns the number
// of rows removed.
func (s *Store) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scrape_queue
		 WHERE status IN ('completed', 'invalid')
		    OR (status IN ('pending', 'processing') AND created_at < NOW() - make_interval(secs => $1))`,
		maxAge.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanQueueEntries(rows pgx.Rows) ([]*types.ScrapeQueueEntry, error) {
	var entries []*types.ScrapeQueueEntry
	for rows.Next() {
		var e types.ScrapeQueueEntry
		if err := rows.Scan(&e.ID, &e.URL, &e.SourceURL, &e.Provider, &e.Pattern,
			&e.Status, &e.Attempts, &e.LastError, &e.CreatedAt, &e.UpdatedAt,
			&e.CompletedAt, &e.ScheduledAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
