package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareDisplayOrderScrapedAtWins(t *testing.T) {
	newer := &JobPosting{ScrapedAt: 2000, PostedAt: 1}
	older := &JobPosting{ScrapedAt: 1000, PostedAt: 9999}

	assert.Negative(t, CompareDisplayOrder(newer, older))
	assert.Positive(t, CompareDisplayOrder(older, newer))
}

func TestCompareDisplayOrderPostedAtBreaksTies(t *testing.T) {
	a := &JobPosting{ScrapedAt: 1000, PostedAt: 500}
	b := &JobPosting{ScrapedAt: 1000, PostedAt: 300}

	assert.Negative(t, CompareDisplayOrder(a, b))
	assert.Positive(t, CompareDisplayOrder(b, a))
}

func TestCompareDisplayOrderUnknownPostedAtSortsLast(t *testing.T) {
	known := &JobPosting{ScrapedAt: 1000, PostedAt: 1}
	unknown := &JobPosting{ScrapedAt: 1000, PostedAt: 0}

	assert.Negative(t, CompareDisplayOrder(known, unknown))
	assert.Positive(t, CompareDisplayOrder(unknown, known))
}

func TestCompareDisplayOrderEqual(t *testing.T) {
	a := &JobPosting{ScrapedAt: 1000, PostedAt: 500}
	b := &JobPosting{ScrapedAt: 1000, PostedAt: 500}

	assert.Zero(t, CompareDisplayOrder(a, b))
}

func TestSortForDisplayIsStable(t *testing.T) {
	first := &JobPosting{Title: "first", ScrapedAt: 1000, PostedAt: 500}
	second := &JobPosting{Title: "second", ScrapedAt: 1000, PostedAt: 500}
	newest := &JobPosting{Title: "newest", ScrapedAt: 2000}

	postings := []*JobPosting{first, second, newest}
	SortForDisplay(postings)

	assert.Equal(t, "newest", postings[0].Title)
	assert.Equal(t, "first", postings[1].Title)
	assert.Equal(t, "second", postings[2].Title)
}
