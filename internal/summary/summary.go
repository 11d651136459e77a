// Package summary builds per-company rollups from the posting corpus.
package summary

import (
	"sort"
	"strings"

	"github.com/jonathan/job-aggregator/internal/types"
)

// usdCodes are the currency spellings that normalize to USD. Postings with
// no currency are assumed domestic USD.
var usdCodes = map[string]bool{
	"":    true,
	"usd": true,
	"us$": true,
	"$":   true,
}

func isUSD(code string) bool {
	return usdCodes[strings.ToLower(strings.TrimSpace(code))]
}

// Build computes one summary per company key across the whole corpus.
// Averages cover only postings with known USD compensation; a band with no
// such postings reports zero. Output is sorted by key for deterministic
// persistence.
func Build(postings []*types.JobPosting) []*types.CompanySummary {
	type accumulator struct {
		summary *types.CompanySummary
		sums    map[types.Level]int
		counts  map[types.Level]int
	}

	byKey := make(map[string]*accumulator)
	var keys []string

	for _, p := range postings {
		if p.CompanyKey == "" {
			continue
		}

		acc, ok := byKey[p.CompanyKey]
		if !ok {
			acc = &accumulator{
				summary: &types.CompanySummary{
					Key:          p.CompanyKey,
					Name:         p.Company,
					CurrencyCode: "USD",
				},
				sums:   make(map[types.Level]int),
				counts: make(map[types.Level]int),
			}
			byKey[p.CompanyKey] = acc
			keys = append(keys, p.CompanyKey)
		}

		s := acc.summary
		s.Count++
		if s.SampleURL == "" {
			s.SampleURL = p.URL
		}
		if p.PostedAt > s.LastPostedAt {
			s.LastPostedAt = p.PostedAt
		}
		if p.ScrapedAt > s.LastScrapedAt {
			s.LastScrapedAt = p.ScrapedAt
		}

		if p.CompensationUnknown || p.TotalCompensation <= 0 || !isUSD(p.CurrencyCode) {
			continue
		}
		band := compensationBand(p.Level)
		acc.sums[band] += p.TotalCompensation
		acc.counts[band]++
	}

	sort.Strings(keys)
	summaries := make([]*types.CompanySummary, 0, len(keys))
	for _, key := range keys {
		acc := byKey[key]
		s := acc.summary
		s.AvgCompensationJunior = average(acc.sums[types.LevelJunior], acc.counts[types.LevelJunior])
		s.AvgCompensationMid = average(acc.sums[types.LevelMid], acc.counts[types.LevelMid])
		s.AvgCompensationSenior = average(acc.sums[types.LevelSenior], acc.counts[types.LevelSenior])
		summaries = append(summaries, s)
	}
	return summaries
}

// compensationBand folds staff and unclassified postings into the senior and
// mid averages respectively; the rollup only exposes three bands.
func compensationBand(level types.Level) types.Level {
	switch level {
	case types.LevelJunior:
		return types.LevelJunior
	case types.LevelSenior, types.LevelStaff:
		return types.LevelSenior
	default:
		return types.LevelMid
	}
}

// average rounds half up, matching integer display semantics.
func average(sum, count int) int {
	if count == 0 {
		return 0
	}
	return (sum + count/2) / count
}
