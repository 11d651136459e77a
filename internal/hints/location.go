package hints

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-aggregator/internal/geo"
)

var (
	remoteCountryRe = regexp.MustCompile(`(?i)\bremote,?\s+(?:in\s+)?([A-Za-z][A-Za-z .]{1,30})`)
	cityRegionRe    = regexp.MustCompile(`^[A-Z][A-Za-z .'\-]+,\s*[A-Za-z .'\-]+$`)
	cityStateRe     = regexp.MustCompile(`\b([A-Z][a-zA-Z.'\-]+(?: [A-Z][a-zA-Z.'\-]+)*),\s*([A-Z]{2})\b`)
	labeledLineRe   = regexp.MustCompile(`(?im)^(?:location|office|based in)s?\s*[:\-]\s*(.+)$`)
	genericLabelRe  = regexp.MustCompile(`(?im)\b(?:work location|office location|job location|where)\s*[:\-]\s*([^\n|]+)`)
)

// earlyLineWindow is how many leading lines are scanned for a bare
// "City, Region" line (tier 2).
const earlyLineWindow = 12

type locationHints struct {
	labels        []string
	remoteCountry string
}

// extractLocations walks the candidate tiers in priority order. The first
// tier that produces at least one dictionary-valid candidate wins; invalid
// candidates fall through to the next tier. A "Remote, <Country>" phrase is
// detected independently and always contributes.
func extractLocations(dict *geo.Dictionary, text string) locationHints {
	out := locationHints{}

	// Tier 1: "Remote, <Country>" anywhere forces remote and names a country.
	if m := remoteCountryRe.FindStringSubmatch(text); m != nil {
		if country, ok := matchCountryPrefix(dict, m[1]); ok {
			out.remoteCountry = country
			out.labels = validated(dict, []string{"Remote, " + country})
			if len(out.labels) > 0 {
				return out
			}
		}
	}

	tiers := []func() []string{
		func() []string { return earlyShortLines(text) },
		func() []string { return labeledLines(text) },
		func() []string { return cityStateTokens(text) },
		func() []string { return dictionaryCities(dict, text) },
		func() []string { return genericLabels(text) },
	}

	for _, tier := range tiers {
		if labels := validated(dict, tier()); len(labels) > 0 {
			out.labels = labels
			return out
		}
	}
	return out
}

// validated resolves each candidate against the dictionary, dropping
// failures, deduplicating, and ordering domestic locations first.
func validated(dict *geo.Dictionary, candidates []string) []string {
	var domestic, foreign []string
	seen := make(map[string]bool)

	for _, c := range candidates {
		loc, ok := geo.ResolveCandidate(dict, c)
		if !ok {
			continue
		}
		key := strings.ToLower(loc.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		if loc.Domestic() {
			domestic = append(domestic, loc.Label)
		} else {
			foreign = append(foreign, loc.Label)
		}
	}
	return append(domestic, foreign...)
}

// earlyShortLines finds short, non-URL, non-heading "City, Region" shaped
// lines near the top of the document.
func earlyShortLines(text string) []string {
	var candidates []string
	lines := strings.Split(text, "\n")
	if len(lines) > earlyLineWindow {
		lines = lines[:earlyLineWindow]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "://") {
			continue
		}
		if len(strings.Fields(line)) > 8 {
			continue
		}
		if cityRegionRe.MatchString(line) {
			candidates = append(candidates, line)
		}
	}
	return candidates
}

// labeledLines pulls "City, ST" tokens out of Location:/Office:/Based in:
// lines.
func labeledLines(text string) []string {
	var candidates []string
	for _, m := range labeledLineRe.FindAllStringSubmatch(text, -1) {
		value := strings.TrimSpace(m[1])
		if token := cityStateRe.FindString(value); token != "" {
			candidates = append(candidates, token)
		} else if value != "" {
			candidates = append(candidates, value)
		}
	}
	return candidates
}

// cityStateTokens scans the whole text for "City, ST" shaped tokens.
func cityStateTokens(text string) []string {
	var candidates []string
	for _, m := range cityStateRe.FindAllString(text, -1) {
		candidates = append(candidates, m)
	}
	return candidates
}

// dictionaryCities looks for known city names embedded in body text.
func dictionaryCities(dict *geo.Dictionary, text string) []string {
	lower := strings.ToLower(text)
	var candidates []string
	for _, name := range dict.CityNames() {
		idx := strings.Index(lower, name)
		if idx < 0 {
			continue
		}
		// Require word boundaries so "london" does not match "londonderry".
		if idx > 0 && isWordChar(lower[idx-1]) {
			continue
		}
		end := idx + len(name)
		if end < len(lower) && isWordChar(lower[end]) {
			continue
		}
		candidates = append(candidates, name)
	}
	return candidates
}

// genericLabels is the last-resort key:value location regex.
func genericLabels(text string) []string {
	var candidates []string
	for _, m := range genericLabelRe.FindAllStringSubmatch(text, -1) {
		if value := strings.TrimSpace(m[1]); value != "" {
			candidates = append(candidates, value)
		}
	}
	return candidates
}

// matchCountryPrefix matches the longest leading word run that names a
// country, so "United Kingdom based" still resolves to United Kingdom.
func matchCountryPrefix(dict *geo.Dictionary, captured string) (string, bool) {
	words := strings.Fields(strings.Trim(captured, " ."))
	for n := min(len(words), 4); n > 0; n-- {
		if country, ok := dict.LookupCountry(strings.Join(words[:n], " ")); ok {
			return country, true
		}
	}
	return "", false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
