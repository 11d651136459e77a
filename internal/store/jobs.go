package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-aggregator/internal/types"
)

const postingColumns = `id, title, company, company_key, url, alternate_urls,
	location, locations, city, state, location_states, country, countries,
	location_search, remote, level, total_compensation, compensation_unknown,
	compensation_reason, currency_code, posted_at, scraped_at, engineer`

// UpsertPosting inserts a posting or refreshes the existing row with the
// same canonical URL. The stored row's ID wins on conflict; the returned ID
// is the one callers should use from then on.
func (s *Store) UpsertPosting(ctx context.Context, job *types.JobPosting) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_postings (`+postingColumns+`, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23, NOW())
		 ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			company_key = EXCLUDED.company_key,
			alternate_urls = EXCLUDED.alternate_urls,
			location = EXCLUDED.location,
			locations = EXCLUDED.locations,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			location_states = EXCLUDED.location_states,
			country = EXCLUDED.country,
			countries = EXCLUDED.countries,
			location_search = EXCLUDED.location_search,
			remote = COALESCE(EXCLUDED.remote, job_postings.remote),
			level = CASE WHEN EXCLUDED.level <> '' THEN EXCLUDED.level ELSE job_postings.level END,
			total_compensation = CASE WHEN EXCLUDED.compensation_unknown THEN job_postings.total_compensation ELSE EXCLUDED.total_compensation END,
			compensation_unknown = job_postings.compensation_unknown AND EXCLUDED.compensation_unknown,
			compensation_reason = CASE WHEN EXCLUDED.compensation_unknown THEN job_postings.compensation_reason ELSE EXCLUDED.compensation_reason END,
			currency_code = CASE WHEN EXCLUDED.compensation_unknown THEN job_postings.currency_code ELSE EXCLUDED.currency_code END,
			posted_at = GREATEST(job_postings.posted_at, EXCLUDED.posted_at),
			scraped_at = GREATEST(job_postings.scraped_at, EXCLUDED.scraped_at),
			engineer = EXCLUDED.engineer,
			updated_at = NOW()
		 RETURNING id`,
		job.ID, job.Title, job.Company, job.CompanyKey, job.URL, job.AlternateURLs,
		job.Location, job.Locations, job.City, job.State, job.LocationStates,
		job.Country, job.Countries, job.LocationSearch, job.Remote, job.Level,
		job.TotalCompensation, job.CompensationUnknown, job.CompensationReason,
		job.CurrencyCode, job.PostedAt, job.ScrapedAt, job.Engineer,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert posting %s: %w", job.URL, err)
	}
	return id, nil
}

// UpdatePosting rewrites a stored posting's derived fields by ID. Used by
// the backfill and enrichment paths after hint application.
func (s *Store) UpdatePosting(ctx context.Context, job *types.JobPosting) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE job_postings SET
			title = $2, company = $3, company_key = $4,
			location = $5, locations = $6, city = $7, state = $8,
			location_states = $9, country = $10, countries = $11,
			location_search = $12, remote = $13, level = $14,
			total_compensation = $15, compensation_unknown = $16,
			compensation_reason = $17, currency_code = $18,
			posted_at = $19, scraped_at = $20, engineer = $21,
			updated_at = NOW()
		 WHERE id = $1`,
		job.ID, job.Title, job.Company, job.CompanyKey,
		job.Location, job.Locations, job.City, job.State,
		job.LocationStates, job.Country, job.Countries,
		job.LocationSearch, job.Remote, job.Level,
		job.TotalCompensation, job.CompensationUnknown,
		job.CompensationReason, job.CurrencyCode,
		job.PostedAt, job.ScrapedAt, job.Engineer,
	)
	if err != nil {
		return fmt.Errorf("failed to update posting %s: %w", job.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("posting not found: %s", job.ID)
	}
	return nil
}

// GetPosting retrieves a posting by ID. Returns nil, nil when absent.
func (s *Store) GetPosting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE id = $1`, id)

	job, err := scanPosting(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return job, nil
}

// GetPostingByURL retrieves a posting by canonical URL. Returns nil, nil
// when absent.
func (s *Store) GetPostingByURL(ctx context.Context, url string) (*types.JobPosting, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM job_postings WHERE url = $1`, url)

	job, err := scanPosting(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get posting by URL: %w", err)
	}
	return job, nil
}

// pageToken is the keyset position of the last row a page handed out. It is
// minted by the store and opaque to callers; an empty token string is the
// start of the stream.
type pageToken struct {
	ScrapedAt int64     `json:"s"`
	PostedAt  int64     `json:"p"`
	ID        uuid.UUID `json:"id"`
}

func encodePageToken(job *types.JobPosting) (string, error) {
	data, err := json.Marshal(pageToken{ScrapedAt: job.ScrapedAt, PostedAt: job.PostedAt, ID: job.ID})
	if err != nil {
		return "", fmt.Errorf("failed to encode page token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodePageToken(token string) (*pageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor token: %w", err)
	}
	var tok pageToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("malformed cursor token: %w", err)
	}
	return &tok, nil
}

// datedRank orders rows with a posting date before undated ones within the
// same scrape time. Must match the CASE expression in the keyset predicate.
func datedRank(postedAt int64) int {
	if postedAt == 0 {
		return 1
	}
	return 0
}

// PagePostings returns a window of postings in display order: freshest
// scrape first, then freshest posting date with undated rows last, with ID
// as the tiebreaker so pages are stable. Position is a keyset token rather
// than an offset, so concurrent upserts that land ahead of the position
// never shift rows into or out of a forward traversal. The returned token
// resumes after the window's last row.
func (s *Store) PagePostings(ctx context.Context, token string, limit int) ([]*types.JobPosting, string, error) {
	const order = ` ORDER BY scraped_at DESC, (posted_at = 0), posted_at DESC, id LIMIT `

	var rows pgx.Rows
	var err error
	if token == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT `+postingColumns+` FROM job_postings`+order+`$1`, limit)
	} else {
		tok, derr := decodePageToken(token)
		if derr != nil {
			return nil, "", derr
		}
		rows, err = s.pool.Query(ctx,
			`SELECT `+postingColumns+` FROM job_postings
			 WHERE scraped_at < $1
			    OR (scraped_at = $1 AND (CASE WHEN posted_at = 0 THEN 1 ELSE 0 END) > $2)
			    OR (scraped_at = $1 AND (CASE WHEN posted_at = 0 THEN 1 ELSE 0 END) = $2 AND posted_at < $3)
			    OR (scraped_at = $1 AND (CASE WHEN posted_at = 0 THEN 1 ELSE 0 END) = $2 AND posted_at = $3 AND id > $4)`+order+`$5`,
			tok.ScrapedAt, datedRank(tok.PostedAt), tok.PostedAt, tok.ID, limit)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to page postings: %w", err)
	}
	defer rows.Close()

	jobs, err := scanPostings(rows)
	if err != nil {
		return nil, "", err
	}
	if len(jobs) == 0 {
		return nil, token, nil
	}

	next, err := encodePageToken(jobs[len(jobs)-1])
	if err != nil {
		return nil, "", err
	}
	return jobs, next, nil
}

// Posting adapts GetPosting to the pagination engine's point-read shape.
func (s *Store) Posting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error) {
	return s.GetPosting(ctx, id)
}

// Page adapts PagePostings to the pagination engine's stream shape.
func (s *Store) Page(ctx context.Context, token string, limit int) ([]*types.JobPosting, string, error) {
	return s.PagePostings(ctx, token, limit)
}

// SearchPostings runs a full-text query over title, company, and location
// search text, in display order.
func (s *Store) SearchPostings(ctx context.Context, query string, limit int) ([]*types.JobPosting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postingColumns+` FROM job_postings
		 WHERE to_tsvector('english', title || ' ' || company || ' ' || COALESCE(location_search, ''))
		       @@ websearch_to_tsquery('english', $1)
		 ORDER BY scraped_at DESC, (posted_at = 0), posted_at DESC, id
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search postings: %w", err)
	}
	defer rows.Close()

	return scanPostings(rows)
}

// CountPostings returns the total posting count.
func (s *Store) CountPostings(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count postings: %w", err)
	}
	return count, nil
}

// SaveDetail stores or refreshes the rich description payload for a posting.
func (s *Store) SaveDetail(ctx context.Context, detail *types.JobDetail) error {
	metadata, err := json.Marshal(detail.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal detail metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_details (posting_id, description, metadata)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (posting_id) DO UPDATE SET
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()`,
		detail.PostingID, detail.Description, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to save detail for %s: %w", detail.PostingID, err)
	}
	return nil
}

// GetPostingWithDetail reads a posting and merges its detail row in: the
// detail description replaces the posting's when present. Returns nil, nil
// when the posting is absent.
func (s *Store) GetPostingWithDetail(ctx context.Context, id uuid.UUID) (*types.JobPosting, error) {
	job, err := s.GetPosting(ctx, id)
	if err != nil || job == nil {
		return job, err
	}

	var description *string
	err = s.pool.QueryRow(ctx,
		`SELECT description FROM job_details WHERE posting_id = $1`, id,
	).Scan(&description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return job, nil
		}
		return nil, fmt.Errorf("failed to get detail for %s: %w", id, err)
	}

	if description != nil && *description != "" {
		job.Description = *description
	}
	return job, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (*types.JobPosting, error) {
	var job types.JobPosting
	err := row.Scan(
		&job.ID, &job.Title, &job.Company, &job.CompanyKey, &job.URL,
		&job.AlternateURLs, &job.Location, &job.Locations, &job.City,
		&job.State, &job.LocationStates, &job.Country, &job.Countries,
		&job.LocationSearch, &job.Remote, &job.Level, &job.TotalCompensation,
		&job.CompensationUnknown, &job.CompensationReason, &job.CurrencyCode,
		&job.PostedAt, &job.ScrapedAt, &job.Engineer,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func scanPostings(rows pgx.Rows) ([]*types.JobPosting, error) {
	var jobs []*types.JobPosting
	for rows.Next() {
		job, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
