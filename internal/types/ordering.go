package types

import "sort"

// CompareDisplayOrder is the single comparator behind every read path
// (index scan, text search, filtered carry). It returns a negative number
// when a sorts before b.
//
// Order: scrapedAt descending, then postedAt descending with postings that
// have no posting date sorted after those that do. Keeping this in one
// place guarantees the three query paths merge into one consistent
// presentation order.
func CompareDisplayOrder(a, b *JobPosting) int {
	if a.ScrapedAt != b.ScrapedAt {
		if a.ScrapedAt > b.ScrapedAt {
			return -1
		}
		return 1
	}

	// Unknown postedAt sorts after known.
	switch {
	case a.PostedAt == 0 && b.PostedAt != 0:
		return 1
	case a.PostedAt != 0 && b.PostedAt == 0:
		return -1
	case a.PostedAt != b.PostedAt:
		if a.PostedAt > b.PostedAt {
			return -1
		}
		return 1
	}

	return 0
}

// SortForDisplay sorts postings in place using CompareDisplayOrder.
// The sort is stable so records that compare equal keep their store order.
func SortForDisplay(postings []*JobPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return CompareDisplayOrder(postings[i], postings[j]) < 0
	})
}
