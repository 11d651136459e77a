package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/types"
)

func TestResolveCandidate_CityStateAbbreviation(t *testing.T) {
	loc, ok := ResolveCandidate(Default(), "Menlo Park, CA")
	require.True(t, ok)

	assert.Equal(t, "Menlo Park, California", loc.Label)
	assert.Equal(t, "Menlo Park", loc.City)
	assert.Equal(t, "California", loc.State)
	assert.Equal(t, "United States", loc.Country)
}

func TestResolveCandidate_ExplicitStateWinsOverDictionary(t *testing.T) {
	// The dictionary's Portland is in Oregon; the explicit state wins.
	loc, ok := ResolveCandidate(Default(), "Portland, ME")
	require.True(t, ok)

	assert.Equal(t, "Portland, Maine", loc.Label)
	assert.Equal(t, "Maine", loc.State)
}

func TestResolveCandidate_InternationalCity(t *testing.T) {
	loc, ok := ResolveCandidate(Default(), "London")
	require.True(t, ok)

	assert.Equal(t, "London, United Kingdom", loc.Label)
	assert.Equal(t, "United Kingdom", loc.Country)
	assert.False(t, loc.Domestic())
}

func TestResolveCandidate_CanadianProvinceAbbreviation(t *testing.T) {
	loc, ok := ResolveCandidate(Default(), "Toronto, ON")
	require.True(t, ok)

	assert.Equal(t, "Toronto, Ontario", loc.Label)
	assert.Equal(t, "Canada", loc.Country)
}

func TestResolveCandidate_RemoteHasNoCountry(t *testing.T) {
	loc, ok := ResolveCandidate(Default(), "Remote")
	require.True(t, ok)

	assert.Equal(t, "Remote", loc.Label)
	assert.Equal(t, "Remote", loc.State)
	assert.Empty(t, loc.Country)
}

func TestResolveCandidate_RemoteWithCountry(t *testing.T) {
	loc, ok := ResolveCandidate(Default(), "Remote, United Kingdom")
	require.True(t, ok)

	assert.Equal(t, "Remote, United Kingdom", loc.Label)
	assert.Equal(t, "Remote", loc.State)
	assert.Equal(t, "United Kingdom", loc.Country)
}

func TestResolveCandidate_Unrecognized(t *testing.T) {
	_, ok := ResolveCandidate(Default(), "Somewhere Nice")
	assert.False(t, ok)
}

func TestResolve_DomesticOrderedFirst(t *testing.T) {
	res := Resolve(Default(), []string{"London", "Austin, TX", "Berlin"})

	require.Len(t, res.Locations, 3)
	assert.Equal(t, "Austin, Texas", res.Locations[0])
	assert.Equal(t, "Austin, Texas", res.PrimaryLocation)
	assert.Equal(t, "Austin", res.City)
	assert.Equal(t, []string{"United States", "United Kingdom", "Germany"}, res.Countries)
}

func TestResolve_InvalidOnlyInputPreservedVerbatim(t *testing.T) {
	res := Resolve(Default(), []string{"HQ Building 7"})

	assert.Equal(t, []string{"HQ Building 7"}, res.Locations)
	assert.Equal(t, types.UnknownSentinel, res.State)
	assert.Equal(t, types.UnknownSentinel, res.Country)
	assert.Equal(t, "HQ Building 7", res.PrimaryLocation)
}

func TestResolve_InvalidCandidatesDroppedWhenOthersResolve(t *testing.T) {
	res := Resolve(Default(), []string{"HQ Building 7", "Denver, CO"})

	assert.Equal(t, []string{"Denver, Colorado"}, res.Locations)
	assert.Equal(t, "Colorado", res.State)
}

func TestResolve_LocationSearchFlattened(t *testing.T) {
	res := Resolve(Default(), []string{"Remote, United Kingdom"})

	assert.Equal(t, "Remote United Kingdom", res.LocationSearch)
}

func TestResolve_Deduplicates(t *testing.T) {
	res := Resolve(Default(), []string{"Seattle, WA", "seattle"})

	assert.Equal(t, []string{"Seattle, Washington"}, res.Locations)
}

func TestResolve_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"Menlo Park, CA"},
		{"Remote"},
		{"Remote, United Kingdom"},
		{"London", "Austin, TX"},
		{"HQ Building 7"},
		{"Springfield, IL"},
	}

	for _, input := range inputs {
		first := Resolve(Default(), input)
		second := Resolve(Default(), first.Locations)
		assert.Equal(t, first, second, "resolve is not a fixed point for %v", input)
	}
}

func TestResolvePosting_UsesSingularLocationFallback(t *testing.T) {
	p := &types.JobPosting{Location: "Boulder, CO"}
	ResolvePosting(Default(), p)

	assert.Equal(t, "Boulder, Colorado", p.Location)
	assert.Equal(t, []string{"Boulder, Colorado"}, p.Locations)
	assert.Equal(t, "Colorado", p.State)
	assert.Equal(t, "Boulder Colorado", p.LocationSearch)
}

func TestResolvePosting_EmptyInputTaggedUnknown(t *testing.T) {
	p := &types.JobPosting{}
	ResolvePosting(Default(), p)

	assert.Equal(t, types.UnknownSentinel, p.State)
	assert.Equal(t, types.UnknownSentinel, p.Country)
	assert.Empty(t, p.Locations)
}
