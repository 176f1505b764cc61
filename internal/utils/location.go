package utils

import (
	"strings"
)

// locationAliases maps common abbreviations and nicknames to canonical city names
var locationAliases = map[string]string{
	"nyc":           "new york",
	"ny":            "new york",
	"new york city": "new york",
	"manhattan":     "new york",
	"brooklyn":      "new york",
	"queens":        "new york",
	"bronx":         "new york",
	"la":            "los angeles",
	"l.a.":          "los angeles",
	"hollywood":     "los angeles",
	"chi":           "chicago",
	"chi-town":      "chicago",
	"chitown":       "chicago",
	"windy city":    "chicago",
	"bos":           "boston",
	"beantown":      "boston",
	"sf":            "san francisco",
	"dc":            "washington",
	"philly":        "philadelphia",
}

// NormalizeLocation lowercases, trims and collapses whitespace, then
// resolves known aliases to their canonical city name
func NormalizeLocation(location string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(location)), " ")
	if normalized == "" {
		return ""
	}

	if canonical, ok := locationAliases[normalized]; ok {
		return canonical
	}

	// "Brooklyn, NY" style input: try the part before the comma
	if head, _, found := strings.Cut(normalized, ","); found {
		head = strings.TrimSpace(head)
		if canonical, ok := locationAliases[head]; ok {
			return canonical
		}
		return head
	}

	return normalized
}

// FuzzyMatchLocation reports whether two place names refer to the same area:
// equal after normalization, or one contained in the other
func FuzzyMatchLocation(a, b string) bool {
	na, nb := NormalizeLocation(a), NormalizeLocation(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Slugify turns a place name into a lowercase hyphenated path segment
func Slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

var stateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC",
}

var validStateCodes = func() map[string]bool {
	codes := make(map[string]bool, len(stateAbbreviations))
	for _, code := range stateAbbreviations {
		codes[code] = true
	}
	return codes
}()

// cityStates lets a well-known city imply its state
var cityStates = map[string]string{
	"new york": "NY", "brooklyn": "NY", "manhattan": "NY", "queens": "NY", "bronx": "NY", "staten island": "NY",
	"los angeles": "CA", "san francisco": "CA", "san diego": "CA", "oakland": "CA", "san jose": "CA",
	"chicago": "IL", "boston": "MA", "cambridge": "MA", "seattle": "WA", "portland": "OR",
	"austin": "TX", "houston": "TX", "dallas": "TX", "miami": "FL", "orlando": "FL",
	"denver": "CO", "atlanta": "GA", "philadelphia": "PA", "pittsburgh": "PA", "phoenix": "AZ",
	"las vegas": "NV", "nashville": "TN", "jersey city": "NJ", "hoboken": "NJ", "washington": "DC",
}

// StateAbbreviation resolves a state code or full name to its two-letter code
func StateAbbreviation(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if code := strings.ToUpper(s); validStateCodes[code] {
		return code, true
	}
	code, ok := stateAbbreviations[strings.Join(strings.Fields(strings.ToLower(s)), " ")]
	return code, ok
}

// InferState returns the state of a well-known city, or ""
func InferState(location string) string {
	key := strings.Join(strings.Fields(strings.ToLower(location)), " ")
	if code, ok := cityStates[key]; ok {
		return code
	}
	if canonical, ok := locationAliases[key]; ok {
		return cityStates[canonical]
	}
	return ""
}
