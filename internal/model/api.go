package model

// ChatRequest represents a user message posted to a conversation
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message" binding:"required"`
}

// TurnResult is the outcome of processing one user message
type TurnResult struct {
	ConversationID string             `json:"conversation_id"`
	Decision       string             `json:"decision"`
	Intent         string             `json:"intent"`
	Turns          []ConversationTurn `json:"turns"`
	Extraction     *ExtractionResult  `json:"extraction,omitempty"`
	Slots          SearchSlots        `json:"slots"`
	MissingFields  []string           `json:"missing_fields"`
	Listings       []ListingResult    `json:"listings,omitempty"`
	SearchURL      string             `json:"search_url,omitempty"`
	SearchError    string             `json:"search_error,omitempty"`
	ResultsPanel   bool               `json:"results_panel_visible"`
	Took           int64              `json:"took_ms"`
}

// ConversationResponse is the read view of a conversation
type ConversationResponse struct {
	State         ConversationState `json:"state"`
	MissingFields []string          `json:"missing_fields"`
}

// ResultsPanelRequest toggles the results panel
type ResultsPanelRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// ListingSearchRequest runs a search without going through the dialogue
type ListingSearchRequest struct {
	Slots SearchSlots `json:"slots"`
}

// ListingSearchResponse represents the results of a direct search
type ListingSearchResponse struct {
	Listings  []ListingResult `json:"listings"`
	Source    string          `json:"source"`
	SearchURL string          `json:"search_url,omitempty"`
	Error     string          `json:"error,omitempty"`
	Took      int64           `json:"took_ms"`
}

// BookmarkRequest saves a listing
type BookmarkRequest struct {
	Listing ListingResult `json:"listing"`
}

// LabelRequest creates a label
type LabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// LabelUpdateRequest patches a label
type LabelUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}
