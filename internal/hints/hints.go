// Package hints heuristically mines a free-text job description for title,
// location, seniority, remote status and compensation. Extraction is a chain
// of pure, first-match-wins extractors over the immutable description string;
// no step ever fails, it just contributes nothing.
package hints

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/types"
)

// Hints is the optional field set mined from one description.
type Hints struct {
	Title             string
	Location          string
	Locations         []string
	Remote            *bool
	RemoteCountry     string
	Level             types.Level
	Compensation      int
	CompensationRange *Range
}

var (
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	levelRe   = regexp.MustCompile(`(?i)\b(intern|internship|junior|jr|mid[- ]?level|senior|sr|staff|principal|lead|manager|director|vp|vice president|chief)\b`)
	remoteRe  = regexp.MustCompile(`(?i)\b(remote-first|remote|hybrid|onsite|on-site)\b`)
)

// Extract runs every extractor over the description. An empty description
// yields zero hints.
func Extract(dict *geo.Dictionary, description string) Hints {
	h := Hints{}
	if strings.TrimSpace(description) == "" {
		return h
	}

	h.Title = extractTitle(description)
	h.Level = extractLevel(description)
	h.Remote = extractRemote(description)

	locs := extractLocations(dict, description)
	if locs.remoteCountry != "" {
		h.RemoteCountry = locs.remoteCountry
		forced := true
		h.Remote = &forced
	}
	if len(locs.labels) > 0 {
		h.Location = locs.labels[0]
		h.Locations = locs.labels
	}

	comp, compRange := extractCompensation(description)
	h.Compensation = comp
	h.CompensationRange = compRange

	return h
}

// extractTitle takes the first Markdown heading line as the title candidate.
func extractTitle(text string) string {
	m := headingRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractLevel coerces the first seniority keyword to a canonical band.
func extractLevel(text string) types.Level {
	m := levelRe.FindString(text)
	if m == "" {
		return ""
	}

	switch strings.ToLower(strings.ReplaceAll(m, " ", "-")) {
	case "intern", "internship", "junior", "jr":
		return types.LevelJunior
	case "staff", "principal", "lead", "manager", "director", "vp", "vice-president", "chief":
		return types.LevelStaff
	case "senior", "sr":
		return types.LevelSenior
	default:
		return types.LevelMid
	}
}

// extractRemote maps the first workplace keyword to a tri-state flag.
func extractRemote(text string) *bool {
	m := remoteRe.FindString(text)
	if m == "" {
		return nil
	}

	remote := strings.HasPrefix(strings.ToLower(m), "remote")
	return &remote
}
