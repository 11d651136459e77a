package geo

import (
	"strings"

	"github.com/jonathan/job-aggregator/internal/types"
)

// ResolvedLocation is one validated location candidate.
type ResolvedLocation struct {
	Label   string // canonical display label, e.g. "Menlo Park, California"
	City    string
	State   string
	Country string
}

// Domestic reports whether the location resolves inside the United States.
func (l ResolvedLocation) Domestic() bool {
	return l.Country == CountryUS
}

// Resolution is the canonical location block for a job record.
type Resolution struct {
	City            string
	State           string
	Country         string
	Locations       []string
	LocationStates  []string
	Countries       []string
	LocationSearch  string
	PrimaryLocation string
}

// ResolveCandidate validates a single free-text candidate against the
// dictionary. The boolean is false when the candidate is not recognizable
// as a location.
func ResolveCandidate(d *Dictionary, raw string) (ResolvedLocation, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ResolvedLocation{}, false
	}

	parts := splitParts(raw)
	first := parts[0]

	// Remote labels never get a country unless one is spelled out.
	if strings.EqualFold(first, "remote") {
		if len(parts) == 1 {
			return ResolvedLocation{Label: "Remote", State: "Remote"}, true
		}
		if country, ok := d.LookupCountry(parts[1]); ok {
			return ResolvedLocation{
				Label:   "Remote, " + country,
				State:   "Remote",
				Country: country,
			}, true
		}
		if region, ok := d.ExpandRegion(parts[1]); ok {
			return ResolvedLocation{
				Label:   "Remote, " + region.State,
				State:   region.State,
				Country: region.Country,
			}, true
		}
		return ResolvedLocation{Label: "Remote", State: "Remote"}, true
	}

	if place, ok := d.LookupCity(first); ok {
		if len(parts) > 1 {
			// An explicit region wins over the dictionary when they disagree
			// ("Portland, ME" is not the dictionary's Portland, Oregon).
			if region, rok := d.ExpandRegion(parts[1]); rok && region.State != place.State {
				return explicitCityRegion(first, region), true
			}
			if country, cok := d.LookupCountry(parts[1]); cok && country != place.Country {
				return ResolvedLocation{
					Label:   titleCase(first) + ", " + country,
					City:    titleCase(first),
					Country: country,
				}, true
			}
		}
		return fromPlace(place), true
	}

	if len(parts) > 1 {
		if region, ok := d.ExpandRegion(parts[1]); ok {
			return explicitCityRegion(first, region), true
		}
		if country, ok := d.LookupCountry(parts[1]); ok {
			return ResolvedLocation{
				Label:   titleCase(first) + ", " + country,
				City:    titleCase(first),
				Country: country,
			}, true
		}
	}

	if region, ok := d.ExpandRegion(first); ok && len(parts) == 1 {
		return ResolvedLocation{
			Label:   region.State,
			State:   region.State,
			Country: region.Country,
		}, true
	}

	if country, ok := d.LookupCountry(first); ok && len(parts) == 1 {
		return ResolvedLocation{Label: country, Country: country}, true
	}

	return ResolvedLocation{}, false
}

// Resolve validates a list of candidates and assembles the canonical
// location block. Domestic locations are ordered before foreign ones; the
// first surviving location is primary. When nothing validates, the first
// raw candidate is preserved verbatim as a display fallback tagged Unknown.
//
// Resolve is a fixed point: feeding its output labels back in produces an
// identical Resolution. The resolver runs at write time and again at read
// time to backfill legacy rows, so this must hold.
func Resolve(d *Dictionary, candidates []string) Resolution {
	var resolved []ResolvedLocation
	seen := make(map[string]bool)
	firstRaw := ""

	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if firstRaw == "" {
			firstRaw = raw
		}
		loc, ok := ResolveCandidate(d, raw)
		if !ok {
			continue
		}
		key := strings.ToLower(loc.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, loc)
	}

	if len(resolved) == 0 {
		if firstRaw == "" {
			return Resolution{State: types.UnknownSentinel, Country: types.UnknownSentinel}
		}
		return Resolution{
			State:           types.UnknownSentinel,
			Country:         types.UnknownSentinel,
			Locations:       []string{firstRaw},
			LocationStates:  []string{types.UnknownSentinel},
			Countries:       []string{types.UnknownSentinel},
			LocationSearch:  flatten([]string{firstRaw}),
			PrimaryLocation: firstRaw,
		}
	}

	// Stable partition: domestic first.
	ordered := make([]ResolvedLocation, 0, len(resolved))
	for _, loc := range resolved {
		if loc.Domestic() {
			ordered = append(ordered, loc)
		}
	}
	for _, loc := range resolved {
		if !loc.Domestic() {
			ordered = append(ordered, loc)
		}
	}

	res := Resolution{
		City:            ordered[0].City,
		State:           ordered[0].State,
		Country:         ordered[0].Country,
		PrimaryLocation: ordered[0].Label,
	}
	for _, loc := range ordered {
		res.Locations = append(res.Locations, loc.Label)
		if loc.State != "" && !contains(res.LocationStates, loc.State) {
			res.LocationStates = append(res.LocationStates, loc.State)
		}
		if loc.Country != "" && !contains(res.Countries, loc.Country) {
			res.Countries = append(res.Countries, loc.Country)
		}
	}
	res.LocationSearch = flatten(res.Locations)

	return res
}

// ResolvePosting re-resolves the location fields of a posting in place.
func ResolvePosting(d *Dictionary, p *types.JobPosting) {
	candidates := p.Locations
	if len(candidates) == 0 && p.Location != "" {
		candidates = []string{p.Location}
	}

	res := Resolve(d, candidates)
	p.Location = res.PrimaryLocation
	p.Locations = res.Locations
	p.City = res.City
	p.State = res.State
	p.Country = res.Country
	p.LocationStates = res.LocationStates
	p.Countries = res.Countries
	p.LocationSearch = res.LocationSearch
}

func fromPlace(p Place) ResolvedLocation {
	loc := ResolvedLocation{City: p.City, State: p.State, Country: p.Country}
	if p.State != "" {
		loc.Label = p.City + ", " + p.State
	} else {
		loc.Label = p.City + ", " + p.Country
	}
	return loc
}

func explicitCityRegion(city string, region Region) ResolvedLocation {
	return ResolvedLocation{
		Label:   titleCase(city) + ", " + region.State,
		City:    titleCase(city),
		State:   region.State,
		Country: region.Country,
	}
}

func splitParts(raw string) []string {
	pieces := strings.Split(raw, ",")
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = []string{raw}
	}
	return parts
}

// flatten builds the locationSearch payload: labels joined with commas removed.
func flatten(labels []string) string {
	flat := make([]string, len(labels))
	for i, l := range labels {
		flat[i] = strings.Join(strings.Fields(strings.ReplaceAll(l, ",", " ")), " ")
	}
	return strings.Join(flat, " ")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
