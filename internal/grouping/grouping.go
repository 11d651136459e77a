// Package grouping collapses near-duplicate postings into display rows.
package grouping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/types"
)

// groupKey identifies postings that render as a single row: same normalized
// title, same company, same seniority band, same remote status.
func groupKey(p *types.JobPosting) string {
	remote := "nil"
	if p.Remote != nil {
		remote = fmt.Sprintf("%t", *p.Remote)
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(p.Title)),
		p.CompanyKey,
		string(p.Level),
		remote,
	}, "\x00")
}

// Group collapses duplicates into GroupedJob rows. Input order is preserved
// for group identity (a group sits where its first member appeared); callers
// sort the result for display. Every input posting appears in exactly one
// group's GroupedJobIDs.
func Group(postings []*types.JobPosting) []*types.GroupedJob {
	index := make(map[string]int)
	groups := make([]*types.GroupedJob, 0, len(postings))

	for _, p := range postings {
		key := groupKey(p)
		at, seen := index[key]
		if !seen {
			index[key] = len(groups)
			groups = append(groups, newGroup(p))
			continue
		}
		merge(groups[at], p)
	}

	return groups
}

func newGroup(p *types.JobPosting) *types.GroupedJob {
	g := &types.GroupedJob{
		JobPosting:    *p,
		GroupedJobIDs: []uuid.UUID{p.ID},
	}
	// The group owns copies of the slices; merging must not mutate members.
	g.Locations = nil
	g.LocationStates = append([]string(nil), p.LocationStates...)
	g.Countries = append([]string(nil), p.Countries...)
	g.AlternateURLs = append([]string(nil), p.AlternateURLs...)
	mergeLocations(g, p)
	return g
}

// mergeLocations folds a member's location labels into the group: the
// singular display label plus the full list, with unknown labels dropped.
func mergeLocations(g *types.GroupedJob, p *types.JobPosting) {
	if p.Location != "" && !strings.EqualFold(p.Location, types.UnknownSentinel) {
		g.Locations = appendFold(g.Locations, p.Location)
	}
	for _, loc := range p.Locations {
		if strings.EqualFold(loc, types.UnknownSentinel) {
			continue
		}
		g.Locations = appendFold(g.Locations, loc)
	}
}

func merge(g *types.GroupedJob, p *types.JobPosting) {
	g.GroupedJobIDs = append(g.GroupedJobIDs, p.ID)

	if p.URL != "" && !strings.EqualFold(p.URL, g.URL) {
		g.AlternateURLs = appendFold(g.AlternateURLs, p.URL)
	}
	for _, u := range p.AlternateURLs {
		if !strings.EqualFold(u, g.URL) {
			g.AlternateURLs = appendFold(g.AlternateURLs, u)
		}
	}

	mergeLocations(g, p)
	for _, st := range p.LocationStates {
		g.LocationStates = appendFold(g.LocationStates, st)
	}
	for _, c := range p.Countries {
		g.Countries = appendFold(g.Countries, c)
	}

	// Prefer known compensation; among known figures the highest wins.
	if !p.CompensationUnknown && p.TotalCompensation > 0 {
		if g.CompensationUnknown || p.TotalCompensation > g.TotalCompensation {
			g.TotalCompensation = p.TotalCompensation
			g.CompensationUnknown = false
			g.CompensationReason = p.CompensationReason
			g.CurrencyCode = p.CurrencyCode
		}
	}

	// Surface the freshest signal on the row.
	if p.ScrapedAt > g.ScrapedAt {
		g.ScrapedAt = p.ScrapedAt
	}
	if p.PostedAt > g.PostedAt {
		g.PostedAt = p.PostedAt
	}
}

// appendFold appends value unless an equal-fold entry already exists.
func appendFold(list []string, value string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}
