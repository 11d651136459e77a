package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-aggregator/internal/types"
)

const summaryColumns = `key, name, count, COALESCE(currency_code, ''),
	avg_compensation_junior, avg_compensation_mid, avg_compensation_senior,
	COALESCE(sample_url, ''), last_posted_at, last_scraped_at`

// ReplaceSummaries rewrites the company rollup table wholesale inside one
// transaction, returning how many rows it inserted and how many previous
// rows it cleared. Recompute is idempotent: running it twice against the
// same corpus yields the same table.
func (s *Store) ReplaceSummaries(ctx context.Context, summaries []*types.CompanySummary) (int, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin summary transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM company_summaries`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clear summaries: %w", err)
	}
	deleted := int(tag.RowsAffected())

	for _, sum := range summaries {
		_, err := tx.Exec(ctx,
			`INSERT INTO company_summaries (key, name, count, currency_code,
				avg_compensation_junior, avg_compensation_mid, avg_compensation_senior,
				sample_url, last_posted_at, last_scraped_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
			sum.Key, sum.Name, sum.Count, sum.CurrencyCode,
			sum.AvgCompensationJunior, sum.AvgCompensationMid, sum.AvgCompensationSenior,
			sum.SampleURL, sum.LastPostedAt, sum.LastScrapedAt,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert summary for %s: %w", sum.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit summaries: %w", err)
	}
	return len(summaries), deleted, nil
}

// ListSummaries retrieves all company rollups ordered by key.
func (s *Store) ListSummaries(ctx context.Context) ([]*types.CompanySummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM company_summaries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*types.CompanySummary
	for rows.Next() {
		var sum types.CompanySummary
		if err := rows.Scan(&sum.Key, &sum.Name, &sum.Count, &sum.CurrencyCode,
			&sum.AvgCompensationJunior, &sum.AvgCompensationMid, &sum.AvgCompensationSenior,
			&sum.SampleURL, &sum.LastPostedAt, &sum.LastScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

// GetSummary retrieves one company rollup by key. Returns nil, nil when
// absent.
func (s *Store) GetSummary(ctx context.Context, key string) (*types.CompanySummary, error) {
	var sum types.CompanySummary
	err := s.pool.QueryRow(ctx,
		`SELECT `+summaryColumns+` FROM company_summaries WHERE key = $1`, key,
	).Scan(&sum.Key, &sum.Name, &sum.Count, &sum.CurrencyCode,
		&sum.AvgCompensationJunior, &sum.AvgCompensationMid, &sum.AvgCompensationSenior,
		&sum.SampleURL, &sum.LastPostedAt, &sum.LastScrapedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary %s: %w", key, err)
	}
	return &sum, nil
}
