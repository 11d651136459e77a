package hints

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is one detected pay range. High equals Low for single figures.
type Range struct {
	Low  int
	High int
}

// minAnnualSalary is the plausible annual-salary floor; smaller values are
// assumed to be hourly rates, percentages or other noise.
const minAnnualSalary = 10_000

var (
	// $187,000 or $187,000 - $220,000 (currency code may trail: "220,000USD").
	absoluteRe = regexp.MustCompile(`\$\s?(\d{2,3}(?:,\d{3})+)(?:\s*(?:-|–|—|to)\s*\$?\s?(\d{2,3}(?:,\d{3})+))?`)

	// 150k or $150k-180k or €120K.
	shorthandRe = regexp.MustCompile(`(?i)(?:[$£€]\s*|(?:usd|cad|gbp|eur)\s*)?(\d{2,3})\s*k\b(?:\s*(?:-|–|—|to)\s*(?:[$£€]\s*)?(\d{2,3})\s*k\b)?`)

	hourlyQualifierRe = regexp.MustCompile(`(?i)^\s*(?:usd|cad|gbp|eur)?\s*(?:/|per\s+)(?:hr|hour)|^\s*hourly`)

	retirement401kRe = regexp.MustCompile(`(?i)401\s*\(?k\)?`)
)

// extractCompensation scans the two numeric patterns across the whole text.
// The reported single figure is the floor of the midpoint of the global min
// and max of all retained values; the reported range is the highest-scoring
// individual range (score = high, or low when the match has no high part).
// Multiple disjoint pay zones in one posting make these two answers differ.
func extractCompensation(text string) (int, *Range) {
	// 401(k) mentions would otherwise parse as a 401-thousand figure.
	text = retirement401kRe.ReplaceAllString(text, "")

	ranges := append(
		scanRanges(text, absoluteRe, 1),
		scanRanges(text, shorthandRe, 1000)...,
	)
	if len(ranges) == 0 {
		return 0, nil
	}

	globalMin, globalMax := ranges[0].Low, ranges[0].Low
	best := ranges[0]
	bestScore := score(ranges[0])

	for _, r := range ranges {
		if r.Low < globalMin {
			globalMin = r.Low
		}
		if r.High > globalMax {
			globalMax = r.High
		}
		if s := score(r); s > bestScore {
			best, bestScore = r, s
		}
	}

	midpoint := (globalMin + globalMax) / 2
	return midpoint, &best
}

// scanRanges collects all matches of one pattern, scaled by multiplier,
// dropping hourly-qualified matches and values below the annual floor.
func scanRanges(text string, re *regexp.Regexp, multiplier int) []Range {
	var out []Range
	for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
		// Hourly qualifier immediately after the match disqualifies it.
		tail := text[idx[1]:]
		if len(tail) > 24 {
			tail = tail[:24]
		}
		if hourlyQualifierRe.MatchString(tail) {
			continue
		}

		low := parseFigure(text[idx[2]:idx[3]]) * multiplier
		high := 0
		if idx[4] >= 0 {
			high = parseFigure(text[idx[4]:idx[5]]) * multiplier
		}

		if low < minAnnualSalary {
			continue
		}
		if high < minAnnualSalary {
			high = low
		}
		out = append(out, Range{Low: low, High: high})
	}
	return out
}

func score(r Range) int {
	if r.High > 0 {
		return r.High
	}
	return r.Low
}

func parseFigure(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
