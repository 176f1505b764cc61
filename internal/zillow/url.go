package zillow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"jetrent/internal/model"
	"jetrent/internal/utils"
)

// BaseURL is the public site the deep links point at
const BaseURL = "https://www.zillow.com"

// rentToPriceMultiplier converts a monthly rent budget into the site's purchase-price filter
const rentToPriceMultiplier = 203.66

type filterValue struct {
	Value bool `json:"value"`
}

type bedsFilter struct {
	Min int  `json:"min"`
	Max *int `json:"max"` // always null
}

type priceFilter struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// filterState keeps the field order the site itself emits
type filterState struct {
	ForRent        filterValue  `json:"fr"`
	ForSaleAgent   filterValue  `json:"fsba"`
	ForSaleOwner   filterValue  `json:"fsbo"`
	NewConstruct   filterValue  `json:"nc"`
	ComingSoon     filterValue  `json:"cmsn"`
	Auction        filterValue  `json:"auc"`
	Foreclosure    filterValue  `json:"fore"`
	MultiFamily    filterValue  `json:"mf"`
	Land           filterValue  `json:"land"`
	Manufactured   filterValue  `json:"manu"`
	SingleFamily   filterValue  `json:"sf"`
	Townhouse      filterValue  `json:"tow"`
	Beds           *bedsFilter  `json:"beds,omitempty"`
	MonthlyPayment *priceFilter `json:"mp,omitempty"`
	Price          *priceFilter `json:"price,omitempty"`
}

type searchQueryState struct {
	UsersSearchTerm string      `json:"usersSearchTerm"`
	IsListVisible   bool        `json:"isListVisible"`
	Category        string      `json:"category"`
	FilterState     filterState `json:"filterState"`
}

// BuildSearchURL returns a rentals deep link for the given parameters.
// An empty location yields "". The zipcode is accepted but not encoded.
func BuildSearchURL(location, state, _ string, bedrooms *int, budget *float64) string {
	location = strings.TrimSpace(location)
	state = strings.TrimSpace(state)
	if location == "" {
		return ""
	}

	locationPath := utils.Slugify(location)
	searchTerm := location
	if state != "" {
		locationPath += "-" + strings.ToLower(state)
		searchTerm += ", " + state
	}

	query := searchQueryState{
		UsersSearchTerm: searchTerm,
		IsListVisible:   true,
		Category:        "SEMANTIC",
		FilterState:     filterState{ForRent: filterValue{Value: true}},
	}
	if bedrooms != nil {
		query.FilterState.Beds = &bedsFilter{Min: *bedrooms}
	}
	if budget != nil {
		query.FilterState.MonthlyPayment = &priceFilter{Max: *budget}
		query.FilterState.Price = &priceFilter{Max: roundHalfUp(*budget * rentToPriceMultiplier)}
	}

	encoded, err := marshalQueryState(query)
	if err != nil {
		// Only plain strings, bools and numbers are involved
		return ""
	}

	return fmt.Sprintf("%s/%s/rentals/?searchQueryState=%s&category=SEMANTIC",
		BaseURL, locationPath, encodeURIComponent(encoded))
}

// SearchURLForSlots builds the deep link from accumulated conversation slots
func SearchURLForSlots(slots model.SearchSlots) string {
	return BuildSearchURL(slots.LocationValue(), slots.StateValue(), slots.ZipcodeValue(), slots.Bedrooms, slots.Budget)
}

// ListingURL returns the detail page for a scraped listing
func ListingURL(p model.ScrapedProperty) string {
	switch {
	case strings.HasPrefix(p.DetailURL, "http://"), strings.HasPrefix(p.DetailURL, "https://"):
		return p.DetailURL
	case p.DetailURL != "":
		if !strings.HasPrefix(p.DetailURL, "/") {
			return BaseURL + "/" + p.DetailURL
		}
		return BaseURL + p.DetailURL
	case p.ZPID != "":
		return fmt.Sprintf("%s/homedetails/%s_zpid/", BaseURL, p.ZPID)
	}
	return ""
}

func marshalQueryState(q searchQueryState) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(q); err != nil {
		return "", fmt.Errorf("failed to encode search query state: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// roundHalfUp matches the rounding of the site's own link builder
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
