package extract

import (
	"net/url"
	"strings"

	"github.com/jonathan/job-aggregator/internal/fetch"
)

// Listing/search page path fragments that never identify a single posting.
var listingPathFragments = []string{
	"/careers/searchjobs",
	"/savejob",
	"/search/results",
	"/jobs/search",
}

// Third-party links that show up inside provider boards but are not
// postings (policy pages, regulator sites).
var excludedHosts = map[string]bool{
	"www.dol.gov":  true,
	"www.eeoc.gov": true,
}

var excludedPathFragments = []string{
	"privacy-policy",
	"cookie-policy",
	"terms-of-service",
	"terms-of-use",
	"/legal/",
}

// CanonicalizeURL cleans a scraped posting URL: trailing slash/backslash
// runs are stripped and an Ashby "/application" suffix collapses to the base
// posting URL. The boolean is false when the URL is not a usable detail link.
func CanonicalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimRight(raw, "/\\")
	if raw == "" {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	if fetch.DetectProvider(raw) == fetch.ProviderAshby {
		raw = strings.TrimSuffix(raw, "/application")
	}

	return raw, true
}

// IsListingURL reports whether a canonical URL is a listing/search page
// rather than a posting detail page. The page that was crawled to discover
// postings (sourceURL) is always a listing.
func IsListingURL(canonical, sourceURL string) bool {
	if sourceURL != "" {
		if src, ok := CanonicalizeURL(sourceURL); ok && strings.EqualFold(canonical, src) {
			return true
		}
	}

	lower := strings.ToLower(canonical)
	for _, fragment := range listingPathFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// IsExcludedURL reports whether a URL is an unrelated third-party link
// observed inside a provider's board.
func IsExcludedURL(canonical string) bool {
	parsed, err := url.Parse(canonical)
	if err != nil {
		return true
	}
	if excludedHosts[strings.ToLower(parsed.Host)] {
		return true
	}

	lower := strings.ToLower(canonical)
	for _, fragment := range excludedPathFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// seedDetailAllowed lists provider signatures that legitimately use a seed
// URL as the posting detail page itself. Generic career pages are often
// seeded directly with the posting.
var seedDetailAllowed = map[fetch.Provider]bool{
	fetch.ProviderUnknown: true,
}

// MatchesSeedURL reports whether a canonical URL should be dropped because
// it exactly equals one of the crawl seed pages.
func MatchesSeedURL(canonical string, seedURLs []string) bool {
	provider := fetch.DetectProvider(canonical)
	if seedDetailAllowed[provider] {
		return false
	}

	for _, seed := range seedURLs {
		if s, ok := CanonicalizeURL(seed); ok && strings.EqualFold(canonical, s) {
			return true
		}
	}
	return false
}
