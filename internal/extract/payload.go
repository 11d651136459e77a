// Package extract normalizes raw scrape payloads into job posting drafts.
package extract

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/job-aggregator/internal/schemas"
)

// Payload is a decoded scrape delivery: the flat record list plus the crawl
// context needed to filter listing and seed URLs.
type Payload struct {
	Records   []map[string]any
	SourceURL string
	SeedURLs  []string
}

// envelope covers the wrapper shapes scrape runs deliver. Only one of the
// record slots is populated per payload.
type envelope struct {
	Items      []map[string]any `json:"items"`
	Normalized []map[string]any `json:"normalized"`
	Data       struct {
		Items []map[string]any `json:"items"`
	} `json:"data"`
	SourceURL string   `json:"sourceUrl"`
	SeedURLs  []string `json:"seedUrls"`
}

// ParsePayload decodes a scrape payload. Payloads are either a bare JSON
// array of records or an envelope wrapping one under items, normalized, or
// data.items. Schema violations are logged and tolerated; only undecodable
// JSON is an error.
func ParsePayload(raw []byte, verbose bool) (*Payload, error) {
	if err := schemas.ValidateScrapePayload(raw); err != nil {
		// Scrapers drift; a shape warning should not block ingestion.
		if verbose {
			log.Printf("[VERBOSE] payload failed schema validation, continuing: %v", err)
		}
	}

	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err == nil {
		return &Payload{Records: bare}, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode scrape payload: %w", err)
	}

	p := &Payload{SourceURL: env.SourceURL, SeedURLs: env.SeedURLs}
	switch {
	case len(env.Items) > 0:
		p.Records = env.Items
	case len(env.Normalized) > 0:
		p.Records = env.Normalized
	default:
		p.Records = env.Data.Items
	}
	return p, nil
}
