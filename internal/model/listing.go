package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Listing sources
const (
	SourceStatic = "static"
	SourceRemote = "remote"
)

// ListingResult is a single apartment returned by a search
type ListingResult struct {
	ID          string  `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Address     string  `json:"address" db:"address"`
	Bedrooms    int     `json:"bedrooms" db:"bedrooms"`
	Bathrooms   float64 `json:"bathrooms,omitempty" db:"bathrooms"`
	Rent        float64 `json:"rent" db:"rent"`
	PriceText   string  `json:"price_text,omitempty" db:"price_text"`
	Description string  `json:"description" db:"description"`
	ExternalURL string  `json:"external_url,omitempty" db:"external_url"`
	ImageURL    string  `json:"image_url,omitempty" db:"image_url"`
	Source      string  `json:"source" db:"source"`
}

// ScrapedProperty is one item returned by the listings scrape API
type ScrapedProperty struct {
	PLID          FlexString    `json:"plid,omitempty"`
	ZPID          FlexString    `json:"zpid,omitempty"`
	ImgSrc        string        `json:"imgSrc"`
	HasImage      bool          `json:"hasImage"`
	DetailURL     string        `json:"detailUrl,omitempty"`
	StatusType    string        `json:"statusType,omitempty"`
	StatusText    string        `json:"statusText,omitempty"`
	Price         FlexString    `json:"price"`
	Address       string        `json:"address"`
	MinBeds       float64       `json:"minBeds"`
	MinBaths      float64       `json:"minBaths"`
	MinArea       *float64      `json:"minArea,omitempty"`
	LatLong       *LatLong      `json:"latLong,omitempty"`
	BadgeInfo     *BadgeInfo    `json:"badgeInfo,omitempty"`
	VariableData  *VariableData `json:"variableData,omitempty"`
	BuildingName  string        `json:"buildingName,omitempty"`
	BuildingID    FlexString    `json:"buildingId,omitempty"`
	IsBuilding    bool          `json:"isBuilding,omitempty"`
	Has3DModel    bool          `json:"has3DModel,omitempty"`
	ListingType   string        `json:"listingType,omitempty"`
	UnitCount     int           `json:"unitCount,omitempty"`
	TimeOnZillow  int64         `json:"timeOnZillow,omitempty"`
	MarketingTags []string      `json:"marketingTreatments,omitempty"`
}

// LatLong is a coordinate pair
type LatLong struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BadgeInfo is the badge shown on a listing card
type BadgeInfo struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// VariableData carries free-form listing annotations
type VariableData struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ID returns plid, falling back to zpid
func (p ScrapedProperty) ID() string {
	if p.PLID != "" {
		return string(p.PLID)
	}
	return string(p.ZPID)
}

// FlexString decodes from a JSON string or number. The scrape API sends
// zpid and price either way depending on the listing.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}
