// Package store provides PostgreSQL persistence for postings, queue entries,
// and company rollups, plus Redis-backed scrape dispatch.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the aggregator needs when they do not
// exist yet. Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS job_postings (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			company_key TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			alternate_urls TEXT[],
			location TEXT,
			locations TEXT[],
			city TEXT,
			state TEXT,
			location_states TEXT[],
			country TEXT,
			countries TEXT[],
			location_search TEXT,
			remote BOOLEAN,
			level TEXT,
			total_compensation BIGINT NOT NULL DEFAULT 0,
			compensation_unknown BOOLEAN NOT NULL DEFAULT TRUE,
			compensation_reason TEXT,
			currency_code TEXT,
			posted_at BIGINT NOT NULL DEFAULT 0,
			scraped_at BIGINT NOT NULL DEFAULT 0,
			engineer BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_display
			ON job_postings (scraped_at DESC, posted_at DESC, id)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_company_key
			ON job_postings (company_key)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_search
			ON job_postings USING GIN (
				to_tsvector('english', title || ' ' || company || ' ' || COALESCE(location_search, ''))
			)`,
		`CREATE TABLE IF NOT EXISTS job_details (
			posting_id UUID PRIMARY KEY REFERENCES job_postings(id) ON DELETE CASCADE,
			description TEXT,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS scrape_queue (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			source_url TEXT,
			provider TEXT,
			pattern TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			scheduled_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_queue_status
			ON scrape_queue (status, created_at)`,
		`CREATE TABLE IF NOT EXISTS company_summaries (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			count INT NOT NULL DEFAULT 0,
			currency_code TEXT,
			avg_compensation_junior BIGINT NOT NULL DEFAULT 0,
			avg_compensation_mid BIGINT NOT NULL DEFAULT 0,
			avg_compensation_senior BIGINT NOT NULL DEFAULT 0,
			sample_url TEXT,
			last_posted_at BIGINT NOT NULL DEFAULT 0,
			last_scraped_at BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS domain_aliases (
			domain TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
