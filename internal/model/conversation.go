package model

import "time"

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationTurn is one message in the conversation log
type ConversationTurn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is everything the dialogue core knows about one conversation
type ConversationState struct {
	ID                  string             `json:"id"`
	Turns               []ConversationTurn `json:"turns"`
	Slots               SearchSlots        `json:"slots"`
	AllSlotsFilled      bool               `json:"all_slots_filled"`
	SearchPerformed     bool               `json:"search_performed"`
	SearchOffered       bool               `json:"search_offered"`
	ResultsPanelVisible bool               `json:"results_panel_visible"`
	LastExtraction      *ExtractionResult  `json:"last_extraction,omitempty"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Clone returns a copy that shares no mutable memory with s
func (s ConversationState) Clone() ConversationState {
	c := s
	c.Turns = append([]ConversationTurn(nil), s.Turns...)
	c.Slots = s.Slots.Clone()
	if s.LastExtraction != nil {
		e := *s.LastExtraction
		e.SearchSlots = s.LastExtraction.SearchSlots.Clone()
		e.MissingFields = append([]string(nil), s.LastExtraction.MissingFields...)
		c.LastExtraction = &e
	}
	return c
}

// PromptMessage is a role/content pair sent to the language model
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
