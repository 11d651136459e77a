// Package geo resolves free-text location candidates into canonical
// city/state/country fields using a curated dictionary.
package geo

import (
	"sort"
	"strings"
)

// Place is one dictionary entry for a known city.
type Place struct {
	City    string
	State   string // empty for cities outside the US and Canada
	Country string
}

// Dictionary holds the static lookup tables used by the resolver. Tables are
// immutable after construction; resolution functions take the dictionary as
// an explicit parameter so tests can swap in smaller ones.
type Dictionary struct {
	cities    map[string]Place  // lowercased city name -> place
	states    map[string]Region // lowercased state abbreviation or full name -> region
	countries map[string]string // lowercased country name or alias -> canonical name
}

// Region is a state or province plus the country it belongs to.
type Region struct {
	State   string
	Country string
}

// CountryUS is the canonical United States country name.
const CountryUS = "United States"

// LookupCity returns the dictionary entry for a city name.
func (d *Dictionary) LookupCity(name string) (Place, bool) {
	p, ok := d.cities[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ExpandRegion resolves a state/province abbreviation or full name.
func (d *Dictionary) ExpandRegion(token string) (Region, bool) {
	r, ok := d.states[strings.ToLower(strings.TrimSpace(token))]
	return r, ok
}

// LookupCountry resolves a country name or common alias to its canonical form.
func (d *Dictionary) LookupCountry(token string) (string, bool) {
	c, ok := d.countries[strings.ToLower(strings.TrimSpace(token))]
	return c, ok
}

// CityNames returns every known city name in sorted order, for
// deterministic body-text scanning.
func (d *Dictionary) CityNames() []string {
	names := make([]string, 0, len(d.cities))
	for name := range d.cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDictionary builds a dictionary from explicit tables. Used by tests.
func NewDictionary(cities map[string]Place, states map[string]Region, countries map[string]string) *Dictionary {
	return &Dictionary{cities: cities, states: states, countries: countries}
}

var defaultDict = buildDefaultDictionary()

// Default returns the curated built-in dictionary.
func Default() *Dictionary {
	return defaultDict
}

func buildDefaultDictionary() *Dictionary {
	d := &Dictionary{
		cities:    make(map[string]Place),
		states:    make(map[string]Region),
		countries: make(map[string]string),
	}

	usStates := map[string]string{
		"al": "Alabama", "ak": "Alaska", "az": "Arizona", "ar": "Arkansas",
		"ca": "California", "co": "Colorado", "ct": "Connecticut", "de": "Delaware",
		"fl": "Florida", "ga": "Georgia", "hi": "Hawaii", "id": "Idaho",
		"il": "Illinois", "in": "Indiana", "ia": "Iowa", "ks": "Kansas",
		"ky": "Kentucky", "la": "Louisiana", "me": "Maine", "md": "Maryland",
		"ma": "Massachusetts", "mi": "Michigan", "mn": "Minnesota", "ms": "Mississippi",
		"mo": "Missouri", "mt": "Montana", "ne": "Nebraska", "nv": "Nevada",
		"nh": "New Hampshire", "nj": "New Jersey", "nm": "New Mexico", "ny": "New York",
		"nc": "North Carolina", "nd": "North Dakota", "oh": "Ohio", "ok": "Oklahoma",
		"or": "Oregon", "pa": "Pennsylvania", "ri": "Rhode Island", "sc": "South Carolina",
		"sd": "South Dakota", "tn": "Tennessee", "tx": "Texas", "ut": "Utah",
		"vt": "Vermont", "va": "Virginia", "wa": "Washington", "wv": "West Virginia",
		"wi": "Wisconsin", "wy": "Wyoming", "dc": "District of Columbia",
	}
	for abbr, full := range usStates {
		r := Region{State: full, Country: CountryUS}
		d.states[abbr] = r
		d.states[strings.ToLower(full)] = r
	}

	caProvinces := map[string]string{
		"on": "Ontario", "bc": "British Columbia", "qc": "Quebec",
		"ab": "Alberta", "mb": "Manitoba", "sk": "Saskatchewan", "ns": "Nova Scotia",
	}
	for abbr, full := range caProvinces {
		r := Region{State: full, Country: "Canada"}
		d.states[abbr] = r
		d.states[strings.ToLower(full)] = r
	}

	countries := map[string]string{
		"united states": CountryUS, "usa": CountryUS, "us": CountryUS,
		"united states of america": CountryUS,
		"canada":                   "Canada",
		"united kingdom":           "United Kingdom", "uk": "United Kingdom",
		"england": "United Kingdom", "great britain": "United Kingdom",
		"germany": "Germany", "france": "France", "netherlands": "Netherlands",
		"ireland": "Ireland", "spain": "Spain", "portugal": "Portugal",
		"poland": "Poland", "sweden": "Sweden", "switzerland": "Switzerland",
		"india": "India", "australia": "Australia", "japan": "Japan",
		"singapore": "Singapore", "israel": "Israel", "brazil": "Brazil",
		"mexico": "Mexico",
	}
	for alias, canonical := range countries {
		d.countries[alias] = canonical
	}

	addUS := func(state string, cities ...string) {
		for _, c := range cities {
			d.cities[strings.ToLower(c)] = Place{City: c, State: state, Country: CountryUS}
		}
	}
	addUS("California",
		"San Francisco", "Menlo Park", "Palo Alto", "Mountain View", "Sunnyvale",
		"San Jose", "Santa Clara", "Cupertino", "San Mateo", "Redwood City",
		"Oakland", "Berkeley", "Fremont", "Sacramento", "Los Angeles",
		"Santa Monica", "Irvine", "San Diego")
	addUS("Washington", "Seattle", "Bellevue", "Redmond")
	addUS("Oregon", "Portland")
	addUS("Colorado", "Denver", "Boulder")
	addUS("Texas", "Austin", "Dallas", "Houston")
	addUS("Illinois", "Chicago")
	addUS("New York", "New York", "Brooklyn")
	addUS("Massachusetts", "Boston", "Cambridge")
	addUS("Georgia", "Atlanta")
	addUS("Florida", "Miami", "Tampa")
	addUS("District of Columbia", "Washington")
	addUS("Virginia", "Arlington", "Reston")
	addUS("Pennsylvania", "Philadelphia", "Pittsburgh")
	addUS("North Carolina", "Raleigh", "Durham", "Charlotte")
	addUS("Tennessee", "Nashville")
	addUS("Arizona", "Phoenix", "Scottsdale", "Tempe")
	addUS("Utah", "Salt Lake City", "Lehi")
	addUS("Minnesota", "Minneapolis")
	addUS("Michigan", "Detroit", "Ann Arbor")
	addUS("Ohio", "Columbus")
	addUS("Missouri", "St. Louis", "Kansas City")
	addUS("Nevada", "Las Vegas")

	addIntl := func(country, state string, cities ...string) {
		for _, c := range cities {
			d.cities[strings.ToLower(c)] = Place{City: c, State: state, Country: country}
		}
	}
	addIntl("Canada", "Ontario", "Toronto", "Ottawa", "Waterloo")
	addIntl("Canada", "British Columbia", "Vancouver")
	addIntl("Canada", "Quebec", "Montreal")
	addIntl("Canada", "Alberta", "Calgary")
	addIntl("United Kingdom", "", "London", "Manchester", "Edinburgh")
	addIntl("Ireland", "", "Dublin")
	addIntl("Germany", "", "Berlin", "Munich")
	addIntl("Netherlands", "", "Amsterdam")
	addIntl("France", "", "Paris")
	addIntl("Switzerland", "", "Zurich")
	addIntl("Sweden", "", "Stockholm")
	addIntl("Australia", "", "Sydney", "Melbourne")
	addIntl("Japan", "", "Tokyo")
	addIntl("Singapore", "", "Singapore")
	addIntl("Israel", "", "Tel Aviv")
	addIntl("Brazil", "", "Sao Paulo")
	addIntl("India", "", "Bangalore", "Bengaluru", "Hyderabad", "Mumbai", "Pune", "Chennai", "Delhi")

	return d
}
