package model

import "time"

// Label is a user-defined tag that can be attached to bookmarks
type Label struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
}

// DefaultLabels are created when the bookmark store is first initialized
var DefaultLabels = []Label{
	{ID: "favorite", Name: "Favorite", Color: "#FF4136"},
	{ID: "toVisit", Name: "To Visit", Color: "#2ECC40"},
	{ID: "contacted", Name: "Contacted", Color: "#0074D9"},
}

// Bookmark is a saved listing with the labels attached to it
type Bookmark struct {
	PropertyID string        `json:"property_id"`
	Listing    ListingResult `json:"listing"`
	LabelIDs   []string      `json:"labels"`
	CreatedAt  time.Time     `json:"created_at"`
}
