// Package types provides type definitions for the canonical job records used throughout the aggregator.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Level is the normalized seniority band for a posting.
type Level string

const (
	// LevelJunior covers intern and junior roles
	LevelJunior Level = "junior"
	// LevelMid is the default band when no keyword matches
	LevelMid Level = "mid"
	// LevelSenior covers senior/sr roles
	LevelSenior Level = "senior"
	// LevelStaff covers staff/principal/lead/director and above
	LevelStaff Level = "staff"
)

// UnknownSentinel marks a location field that could not be resolved.
// Resolvers return this instead of an empty string so downstream display
// and filtering code has a total value to work with.
const UnknownSentinel = "Unknown"

// JobPosting is the canonical, searchable job record.
//
// URL is always the non-listing detail page for the posting. AlternateURLs
// holds the detail URLs of postings that were merged into this row and never
// contains the canonical URL of an unmerged posting.
type JobPosting struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Company       string    `json:"company"`
	CompanyKey    string    `json:"company_key"`
	Description   string    `json:"description,omitempty"`
	URL           string    `json:"url"`
	AlternateURLs []string  `json:"alternate_urls,omitempty"`

	// Location fields. Location is the display label, Locations the ordered
	// list of distinct labels (primary first). LocationSearch is the
	// flattened string fed to the text-search index and must be regenerated
	// whenever any other location field changes.
	Location       string   `json:"location,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	LocationStates []string `json:"location_states,omitempty"`
	Country        string   `json:"country,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	LocationSearch string   `json:"location_search,omitempty"`

	Remote *bool `json:"remote,omitempty"`
	Level  Level `json:"level,omitempty"`

	// Compensation is annualized, in source currency units.
	TotalCompensation   int    `json:"total_compensation,omitempty"`
	CompensationUnknown bool   `json:"compensation_unknown"`
	CompensationReason  string `json:"compensation_reason,omitempty"`
	CurrencyCode        string `json:"currency_code,omitempty"`

	// PostedAt and ScrapedAt are epoch milliseconds. PostedAt of zero means
	// the source did not declare a posting date.
	PostedAt  int64 `json:"posted_at,omitempty"`
	ScrapedAt int64 `json:"scraped_at"`

	Engineer bool `json:"engineer"`
}

// JobDetail holds the rich description payload for a posting, 1:1 by
// posting ID. Detail rows never surface their own identity to callers;
// the store merges their fields into the posting on read.
type JobDetail struct {
	PostingID   uuid.UUID      `json:"-"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// GroupedJob is one display row produced by the dedup engine. It is a view
// over one or more underlying postings and is never persisted.
type GroupedJob struct {
	JobPosting
	GroupedJobIDs []uuid.UUID `json:"grouped_job_ids"`
}

// CompanySummary is a derived per-company rollup, rebuilt wholesale by the
// periodic recompute. Averages cover only postings whose currency normalizes
// to USD and whose compensation is known.
type CompanySummary struct {
	Key                   string `json:"key"`
	Name                  string `json:"name"`
	Count                 int    `json:"count"`
	CurrencyCode          string `json:"currency_code"`
	AvgCompensationJunior int    `json:"avg_compensation_junior,omitempty"`
	AvgCompensationMid    int    `json:"avg_compensation_mid,omitempty"`
	AvgCompensationSenior int    `json:"avg_compensation_senior,omitempty"`
	SampleURL             string `json:"sample_url,omitempty"`
	LastPostedAt          int64  `json:"last_posted_at,omitempty"`
	LastScrapedAt         int64  `json:"last_scraped_at,omitempty"`
}

// Queue entry statuses.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
	QueueStatusInvalid    = "invalid"
)

// StaleQueueAge is how long a pending entry may sit before the sweep purges it.
const StaleQueueAge = 7 * 24 * time.Hour

// ScrapeQueueEntry is one unit of scrape work written by the intake pipeline
// and consumed by the worker pool.
type ScrapeQueueEntry struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	SourceURL   string     `json:"source_url,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Pattern     string     `json:"pattern,omitempty"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// DomainAlias maps a lowercased host to a canonical company display name.
// Reference data: read by the company resolver, never mutated by the core.
type DomainAlias struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}
