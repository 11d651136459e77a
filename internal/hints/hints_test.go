package hints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/geo"
	"github.com/jonathan/job-aggregator/internal/types"
)

func TestExtract_SecurityEngineerScenario(t *testing.T) {
	description := "# Senior Offensive Security Engineer\n" +
		"Menlo Park, CA\n\n" +
		"We are hiring an experienced engineer to break things before attackers do.\n\n" +
		"Compensation: $187,000-$220,000USD plus equity.\n"

	h := Extract(geo.Default(), description)

	assert.Equal(t, "Senior Offensive Security Engineer", h.Title)
	assert.Equal(t, "Menlo Park, California", h.Location)
	assert.Equal(t, types.LevelSenior, h.Level)
	assert.GreaterOrEqual(t, h.Compensation, 187000)
	require.NotNil(t, h.CompensationRange)
	assert.Equal(t, 187000, h.CompensationRange.Low)
	assert.Equal(t, 220000, h.CompensationRange.High)
}

func TestExtract_EmptyDescription(t *testing.T) {
	h := Extract(geo.Default(), "")

	assert.Empty(t, h.Title)
	assert.Empty(t, h.Location)
	assert.Nil(t, h.Remote)
	assert.Zero(t, h.Compensation)
}

func TestExtractTitle_FirstHeadingWins(t *testing.T) {
	h := Extract(geo.Default(), "intro text\n# Backend Engineer\n## About us\n")
	assert.Equal(t, "Backend Engineer", h.Title)
}

func TestExtractLevel_Precedence(t *testing.T) {
	tests := []struct {
		text string
		want types.Level
	}{
		{"Junior Developer wanted", types.LevelJunior},
		{"Software Engineering Intern", types.LevelJunior},
		{"Senior Platform Engineer", types.LevelSenior},
		{"Sr. Data Engineer", types.LevelSenior},
		{"Staff Engineer, Infrastructure", types.LevelStaff},
		{"Principal Architect", types.LevelStaff},
		{"Director of Engineering", types.LevelStaff},
		{"Mid-level Backend Engineer", types.LevelMid},
		{"Just an engineer", ""},
	}

	for _, tt := range tests {
		h := Extract(geo.Default(), tt.text)
		assert.Equal(t, tt.want, h.Level, "text: %q", tt.text)
	}
}

func TestExtractRemote_Keywords(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		text string
		want *bool
	}{
		{"This role is fully remote.", boolPtr(true)},
		{"We are a remote-first company.", boolPtr(true)},
		{"Hybrid schedule, 3 days in office.", boolPtr(false)},
		{"This is an on-site position.", boolPtr(false)},
		{"Onsite in our lab.", boolPtr(false)},
		{"No workplace info.", nil},
	}

	for _, tt := range tests {
		h := Extract(geo.Default(), tt.text)
		if tt.want == nil {
			assert.Nil(t, h.Remote, "text: %q", tt.text)
		} else {
			require.NotNil(t, h.Remote, "text: %q", tt.text)
			assert.Equal(t, *tt.want, *h.Remote, "text: %q", tt.text)
		}
	}
}

func TestExtract_RemoteCountryForcesRemote(t *testing.T) {
	h := Extract(geo.Default(), "Work from anywhere. Remote, United Kingdom only.\nHybrid is not offered.")

	assert.Equal(t, "United Kingdom", h.RemoteCountry)
	require.NotNil(t, h.Remote)
	assert.True(t, *h.Remote)
	assert.Equal(t, "Remote, United Kingdom", h.Location)
}

func TestExtract_LabeledLocationLine(t *testing.T) {
	text := "# Engineer\nGreat role at a great company doing great and meaningful things every day.\n\nLocation: our office in Austin, TX (downtown)\n"
	h := Extract(geo.Default(), text)

	assert.Equal(t, "Austin, Texas", h.Location)
}

func TestExtract_CityStateTokenAnywhere(t *testing.T) {
	text := "We build rockets. Our launch operations team sits in Hawthorne and our software group is based out of Redmond, WA where this role reports."
	h := Extract(geo.Default(), text)

	assert.Equal(t, "Redmond, Washington", h.Location)
}

func TestExtract_DictionaryCityInBody(t *testing.T) {
	text := "Our engineering hub in Amsterdam is growing quickly and this role joins the platform group there full time with occasional travel."
	h := Extract(geo.Default(), text)

	assert.Equal(t, "Amsterdam, Netherlands", h.Location)
}

func TestExtract_DomesticOrderedBeforeForeign(t *testing.T) {
	text := "# Engineer\nLondon, England\nDenver, CO\n"
	h := Extract(geo.Default(), text)

	require.Len(t, h.Locations, 2)
	assert.Equal(t, "Denver, Colorado", h.Locations[0])
	assert.Equal(t, "Denver, Colorado", h.Location)
}

func TestExtract_InvalidCandidatesFallThrough(t *testing.T) {
	// The early line looks like "City, Region" but does not validate, so the
	// extractor falls through to the labeled-line tier.
	text := "# Engineer\nSynergy, Excellence\nmore prose follows here\nLocation: Chicago, IL\n"
	h := Extract(geo.Default(), text)

	assert.Equal(t, "Chicago, Illinois", h.Location)
}

func TestExtractCompensation_MidpointOfGlobalExtremes(t *testing.T) {
	// Two disjoint pay zones: midpoint spans both, range is the best single one.
	text := "Zone A: $100,000 - $120,000. Zone B: $150,000 - $180,000."
	comp, r := extractCompensation(text)

	assert.Equal(t, 140000, comp)
	require.NotNil(t, r)
	assert.Equal(t, 150000, r.Low)
	assert.Equal(t, 180000, r.High)
}

func TestExtractCompensation_KShorthand(t *testing.T) {
	comp, r := extractCompensation("We pay $150k-180k for this role.")

	assert.Equal(t, 165000, comp)
	require.NotNil(t, r)
	assert.Equal(t, 150000, r.Low)
	assert.Equal(t, 180000, r.High)
}

func TestExtractCompensation_Ignores401k(t *testing.T) {
	comp, r := extractCompensation("Benefits include 401k matching and a 401(k) plan.")

	assert.Zero(t, comp)
	assert.Nil(t, r)
}

func TestExtractCompensation_IgnoresHourly(t *testing.T) {
	comp, r := extractCompensation("Contract rate $10,500 /hr equivalent billed monthly.")

	assert.Zero(t, comp)
	assert.Nil(t, r)
}

func TestExtractCompensation_DiscardsImplausiblyLow(t *testing.T) {
	comp, r := extractCompensation("Stipend of $1,500 per month.")

	assert.Zero(t, comp)
	assert.Nil(t, r)
}
