package extract

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/company"
	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/sanitize"
	"github.com/jonathan/job-aggregator/internal/types"
)

var engineerTitleRe = regexp.MustCompile(`(?i)\b(engineer|engineering|developer|swe|sde|sre|devops|programmer)\b`)

// IsEngineerTitle reports whether a title reads as a software engineering
// role.
func IsEngineerTitle(title string) bool {
	return engineerTitleRe.MatchString(title)
}

// ReasonProviderMetadata marks compensation taken from structured provider
// fields rather than parsed out of the description.
const ReasonProviderMetadata = "from provider metadata"

// ReasonNoCompensation marks postings with no compensation signal at all.
const ReasonNoCompensation = "no compensation information found"

// ExtractJobs normalizes every record in a payload into a posting draft.
// Records that cannot produce a usable posting (listing URLs, empty titles,
// policy pages) are skipped individually; one bad record never fails the run.
func ExtractJobs(dict *geo.Dictionary, p *Payload, now time.Time, verbose bool) []*types.JobPosting {
	jobs := make([]*types.JobPosting, 0, len(p.Records))
	for i, rec := range p.Records {
		job, reason := extractJob(dict, rec, p, now)
		if job == nil {
			if verbose && reason != "" {
				log.Printf("[VERBOSE] skipping record %d: %s", i, reason)
			}
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func extractJob(dict *geo.Dictionary, rec map[string]any, p *Payload, now time.Time) (*types.JobPosting, string) {
	rawURL := stringField(rec, "url", "link", "href", "applyUrl")
	canonical, ok := CanonicalizeURL(rawURL)
	if !ok {
		return nil, "unusable URL " + rawURL
	}
	if IsListingURL(canonical, p.SourceURL) {
		return nil, "listing page " + canonical
	}
	if IsExcludedURL(canonical) {
		return nil, "excluded third-party link " + canonical
	}
	if MatchesSeedURL(canonical, p.SeedURLs) {
		return nil, "seed page " + canonical
	}

	title := sanitize.CleanTitle(stringField(rec, "title", "name", "jobTitle"))
	if title == "" {
		return nil, "no usable title for " + canonical
	}

	name := strings.TrimSpace(stringField(rec, "company", "companyName", "organization"))
	if name == "" {
		name = company.DeriveFromURL(canonical)
	}

	job := &types.JobPosting{
		ID:         uuid.New(),
		Title:      title,
		Company:    name,
		CompanyKey: company.NormalizeFilterKey(name),
		URL:        canonical,
		Engineer:   engineerTitleRe.MatchString(title),
	}

	if raw := stringField(rec, "description", "content", "body"); raw != "" {
		job.Description = sanitize.CleanText(sanitize.StripInlineJSON(sanitize.StripHTML(raw)))
	}

	job.Locations = recordLocations(rec)
	geo.ResolvePosting(dict, job)

	if comp, currency, ok := structuredCompensation(rec); ok {
		job.TotalCompensation = comp
		job.CurrencyCode = currency
		job.CompensationReason = ReasonProviderMetadata
	} else {
		job.CompensationUnknown = true
		job.CompensationReason = ReasonNoCompensation
	}

	job.PostedAt = epochMillis(firstField(rec, "postedAt", "posted_at", "publishedAt", "datePosted"))
	job.ScrapedAt = epochMillis(firstField(rec, "scrapedAt", "scraped_at"))
	if job.ScrapedAt == 0 {
		job.ScrapedAt = now.UnixMilli()
	}

	return job, ""
}

// recordLocations collects raw location candidates from the singular and
// plural record fields. Entries are either strings or objects with a name.
func recordLocations(rec map[string]any) []string {
	var out []string
	appendCandidate := func(v any) {
		switch loc := v.(type) {
		case string:
			if s := strings.TrimSpace(loc); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if s := strings.TrimSpace(stringField(loc, "name", "location", "label")); s != "" {
				out = append(out, s)
			}
		}
	}

	appendCandidate(rec["location"])
	if list, ok := rec["locations"].([]any); ok {
		for _, v := range list {
			appendCandidate(v)
		}
	}
	return out
}

// structuredCompensation reads provider salary metadata when present. The
// annualized figure is the midpoint of the declared min and max.
func structuredCompensation(rec map[string]any) (int, string, bool) {
	var salary map[string]any
	for _, key := range []string{"salary", "compensation"} {
		if m, ok := rec[key].(map[string]any); ok {
			salary = m
			break
		}
	}
	if salary == nil {
		if meta, ok := rec["metadata"].(map[string]any); ok {
			salary, _ = meta["salary"].(map[string]any)
		}
	}
	if salary == nil {
		return 0, "", false
	}

	low := numberField(salary, "min", "minValue", "low", "from")
	high := numberField(salary, "max", "maxValue", "high", "to")
	if low == 0 && high == 0 {
		return 0, "", false
	}
	if low == 0 {
		low = high
	}
	if high == 0 {
		high = low
	}

	currency := stringField(salary, "currency", "currencyCode")
	return int((low + high) / 2), currency, true
}

func stringField(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := rec[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func numberField(rec map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if f, ok := rec[key].(float64); ok && f > 0 {
			return f
		}
	}
	return 0
}

func firstField(rec map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// epochMillis coerces the timestamp shapes scrapers emit: epoch seconds,
// epoch milliseconds, or RFC 3339 strings. Zero means unknown.
func epochMillis(v any) int64 {
	switch ts := v.(type) {
	case float64:
		if ts <= 0 {
			return 0
		}
		// Values below ~2001-09 in milliseconds are epoch seconds.
		if ts < 1e12 {
			return int64(ts) * 1000
		}
		return int64(ts)
	case string:
		ts = strings.TrimSpace(ts)
		if ts == "" {
			return 0
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}
