// Package company derives canonical company identities from posting URLs and
// noisy name fields, and matches postings against normalized company filters.
package company

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/job-aggregator/internal/types"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
	wdEnvTokenRe = regexp.MustCompile(`^wd\d+$`)
)

// Legal suffix tokens stripped from the end of company names when building
// filter keys. Stripping repeats, so "Acme Holdings Inc LLC" loses both.
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"co": true, "company": true, "llc": true, "llp": true,
	"ltd": true, "limited": true, "plc": true,
}

// Subdomain labels that never identify a tenant.
var genericSubdomains = map[string]bool{
	"www": true, "careers": true, "jobs": true, "boards": true,
	"apply": true, "job": true, "career": true, "recruiting": true,
	"talent": true, "hire": true, "app": true,
}

// DeriveFromURL extracts a display company name from a posting URL using
// provider slug rules, falling back to hostname heuristics. Returns "" when
// the URL is unusable.
func DeriveFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)

	if slug := providerSlug(host, parsed.Path); slug != "" {
		return titleCaseSlug(slug)
	}

	if slug := workdayTenant(host); slug != "" {
		return titleCaseSlug(slug)
	}

	// Generic fallback: drop board-style prefixes, take the second-to-last
	// DNS label.
	labels := strings.Split(stripBoardPrefix(host), ".")
	if len(labels) >= 2 {
		return titleCaseSlug(labels[len(labels)-2])
	}
	return titleCaseSlug(labels[0])
}

// providerSlug handles the ATS hosts whose path or subdomain carries the
// board slug directly.
func providerSlug(host, path string) string {
	segments := splitPath(path)

	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		// boards.greenhouse.io/{slug}, boards-api.greenhouse.io/v1/boards/{slug}/jobs,
		// job-boards.greenhouse.io/{slug}/jobs/123
		for i, seg := range segments {
			if seg == "boards" && i+1 < len(segments) {
				return segments[i+1]
			}
		}
		if len(segments) > 0 && segments[0] != "v1" && segments[0] != "embed" {
			return segments[0]
		}
	case strings.HasSuffix(host, "ashbyhq.com"):
		// jobs.ashbyhq.com/{slug}/{posting-id}
		if len(segments) > 0 {
			return segments[0]
		}
	case strings.HasSuffix(host, "lever.co"):
		// jobs.lever.co/{slug}/{posting-id}
		if len(segments) > 0 {
			return segments[0]
		}
	case strings.HasSuffix(host, "avature.net"):
		// {tenant}.avature.net/careers/...
		if labels := strings.Split(host, "."); len(labels) >= 3 {
			return labels[0]
		}
	}
	return ""
}

// workdayTenant pulls the tenant subdomain out of a Workday host, skipping
// generic labels and wdN environment tokens. The first meaningful remaining
// label wins, else the last one before the base domain.
func workdayTenant(host string) string {
	if !strings.HasSuffix(host, "myworkdayjobs.com") && !strings.HasSuffix(host, "workday.com") {
		return ""
	}

	labels := strings.Split(host, ".")
	// Drop the base domain labels ("myworkdayjobs", "com").
	if len(labels) <= 2 {
		return ""
	}
	subs := labels[:len(labels)-2]

	var last string
	for _, label := range subs {
		if genericSubdomains[label] || wdEnvTokenRe.MatchString(label) {
			continue
		}
		return label
	}
	if len(subs) > 0 {
		last = subs[len(subs)-1]
	}
	return last
}

// NormalizeFilterKey builds the normalized identity key used for filter
// matching: lowercase, apostrophes removed, non-alphanumerics collapsed,
// trailing legal suffixes stripped (including spelled-out single letters,
// "l l c"), tokens joined with no separator.
//
// The key is suffix-stable: NormalizeFilterKey("Stripe") ==
// NormalizeFilterKey("Stripe, Inc.").
func NormalizeFilterKey(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.TrimSpace(nonAlnumRe.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	tokens := strings.Fields(s)
	for len(tokens) > 1 {
		if legalSuffixes[tokens[len(tokens)-1]] {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		if n := trailingLetterSuffix(tokens); n > 0 {
			tokens = tokens[:len(tokens)-n]
			continue
		}
		break
	}
	return strings.Join(tokens, "")
}

// trailingLetterSuffix detects suffixes spelled as separated single letters
// ("l l c") and returns how many tokens to drop, or 0.
func trailingLetterSuffix(tokens []string) int {
	for n := 3; n >= 2; n-- {
		if len(tokens) <= n {
			continue
		}
		joined := ""
		ok := true
		for _, tok := range tokens[len(tokens)-n:] {
			if len(tok) != 1 {
				ok = false
				break
			}
			joined += tok
		}
		if ok && legalSuffixes[joined] {
			return n
		}
	}
	return 0
}

// NormalizeDomain reduces a posting URL to the base-domain key used by the
// alias table. ATS providers canonicalize to a scheme keyed by board slug so
// api and board hosts of the same tenant collide; everything else collapses
// to the registrable domain.
func NormalizeDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)

	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		if slug := providerSlug(host, parsed.Path); slug != "" {
			return "greenhouse.io/" + strings.ToLower(slug)
		}
		return "greenhouse.io"
	case strings.HasSuffix(host, "ashbyhq.com"):
		if slug := providerSlug(host, parsed.Path); slug != "" {
			return "ashbyhq.com/" + strings.ToLower(slug)
		}
		return "ashbyhq.com"
	case strings.HasSuffix(host, "myworkdayjobs.com"), strings.HasSuffix(host, "workday.com"):
		if tenant := workdayTenant(host); tenant != "" {
			return tenant + ".myworkdayjobs.com"
		}
		return "myworkdayjobs.com"
	}

	host = stripBoardPrefix(host)
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	// Naive registrable-domain heuristic: a two-letter TLD suggests a ccTLD
	// with a second-level registry (example.co.uk), so keep three labels.
	if len(labels[len(labels)-1]) <= 2 {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// MatchesFilters reports whether a posting satisfies a company filter set.
// An empty filter set matches everything. The posting's own key is tried
// first, then the domain-alias table keyed by normalized URL domain.
func MatchesFilters(job *types.JobPosting, filterKeys map[string]bool, aliases map[string]string) bool {
	if len(filterKeys) == 0 {
		return true
	}

	key := job.CompanyKey
	if key == "" {
		key = NormalizeFilterKey(job.Company)
	}
	if filterKeys[key] {
		return true
	}

	if len(aliases) == 0 {
		return false
	}
	domain := NormalizeDomain(job.URL)
	if domain == "" {
		return false
	}
	if name, ok := aliases[domain]; ok {
		return filterKeys[NormalizeFilterKey(name)]
	}
	return false
}

// BuildFilterSet normalizes a list of raw company filter strings.
func BuildFilterSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if key := NormalizeFilterKey(name); key != "" {
			set[key] = true
		}
	}
	return set
}

func stripBoardPrefix(host string) string {
	for _, prefix := range []string{"www.", "careers.", "jobs.", "boards."} {
		if strings.HasPrefix(host, prefix) {
			return strings.TrimPrefix(host, prefix)
		}
	}
	return host
}

func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// titleCaseSlug turns a slug into a display name: non-alphanumeric runs
// become single spaces, each word capitalized.
func titleCaseSlug(slug string) string {
	s := nonAlnumRe.ReplaceAllString(strings.ToLower(slug), " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
