package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

func acmePosting(level types.Level, comp int, currency string) *types.JobPosting {
	p := &types.JobPosting{
		Company:    "Acme, Inc.",
		CompanyKey: "acme",
		Level:      level,
		URL:        "https://jobs.lever.co/acme/1",
	}
	if comp > 0 {
		p.TotalCompensation = comp
		p.CurrencyCode = currency
	} else {
		p.CompensationUnknown = true
	}
	return p
}

func TestBuild_AcmeRollup(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting(types.LevelJunior, 100000, "USD"),
		acmePosting(types.LevelMid, 150000, "USD"),
		acmePosting(types.LevelMid, 160000, "USD"),
		acmePosting(types.LevelSenior, 200000, "USD"),
		acmePosting(types.LevelSenior, 0, ""),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "acme", s.Key)
	assert.Equal(t, "Acme, Inc.", s.Name)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, "USD", s.CurrencyCode)
	assert.Equal(t, 100000, s.AvgCompensationJunior)
	assert.Equal(t, 155000, s.AvgCompensationMid)
	assert.Equal(t, 200000, s.AvgCompensationSenior)
	assert.Equal(t, "https://jobs.lever.co/acme/1", s.SampleURL)
}

func TestBuild_NonUSDExcludedFromAveragesButCounted(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting(types.LevelSenior, 200000, "USD"),
		acmePosting(types.LevelSenior, 90000, "GBP"),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, 200000, summaries[0].AvgCompensationSenior)
}

func TestBuild_MissingCurrencyTreatedAsUSD(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting(types.LevelMid, 150000, ""),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)
	assert.Equal(t, 150000, summaries[0].AvgCompensationMid)
}

func TestBuild_StaffFoldsIntoSenior(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting(types.LevelSenior, 200000, "USD"),
		acmePosting(types.LevelStaff, 260000, "USD"),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)
	assert.Equal(t, 230000, summaries[0].AvgCompensationSenior)
}

func TestBuild_UnclassifiedFoldsIntoMid(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting("", 140000, "USD"),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)
	assert.Equal(t, 140000, summaries[0].AvgCompensationMid)
}

func TestBuild_RoundsHalfUp(t *testing.T) {
	postings := []*types.JobPosting{
		acmePosting(types.LevelMid, 150000, "USD"),
		acmePosting(types.LevelMid, 150001, "USD"),
	}

	summaries := Build(postings)
	require.Len(t, summaries, 1)
	assert.Equal(t, 150001, summaries[0].AvgCompensationMid)
}

func TestBuild_TimestampsTrackLatest(t *testing.T) {
	a := acmePosting(types.LevelMid, 150000, "USD")
	a.PostedAt = 100
	a.ScrapedAt = 500
	b := acmePosting(types.LevelMid, 150000, "USD")
	b.PostedAt = 300
	b.ScrapedAt = 200

	summaries := Build([]*types.JobPosting{a, b})
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 300, summaries[0].LastPostedAt)
	assert.EqualValues(t, 500, summaries[0].LastScrapedAt)
}

func TestBuild_SortedByKey(t *testing.T) {
	postings := []*types.JobPosting{
		{Company: "Globex", CompanyKey: "globex"},
		{Company: "Acme", CompanyKey: "acme"},
		{Company: "Initech", CompanyKey: "initech"},
	}

	summaries := Build(postings)
	require.Len(t, summaries, 3)
	assert.Equal(t, "acme", summaries[0].Key)
	assert.Equal(t, "globex", summaries[1].Key)
	assert.Equal(t, "initech", summaries[2].Key)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	assert.Empty(t, Build(nil))
}
