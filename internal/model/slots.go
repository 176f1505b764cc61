package model

import "strings"

// Slot names used in missing-field lists and extraction responses
const (
	SlotLocation = "location"
	SlotState    = "state"
	SlotZipcode  = "zipcode"
	SlotBedrooms = "bedrooms"
	SlotBudget   = "budget"
)

// RequiredSlots lists the slots a search needs, in the order they are asked for
var RequiredSlots = []string{SlotLocation, SlotState, SlotBedrooms, SlotBudget}

// SearchSlots holds the search parameters accumulated over a conversation.
// A nil field is unknown; fields are never defaulted.
type SearchSlots struct {
	Location *string  `json:"location,omitempty"`
	State    *string  `json:"state,omitempty"`
	Zipcode  *string  `json:"zipcode,omitempty"`
	Bedrooms *int     `json:"bedrooms,omitempty"` // 0 = studio
	Budget   *float64 `json:"budget,omitempty"`   // maximum monthly rent in USD
}

// ExtractionResult is what the extractor returns for a single user message
type ExtractionResult struct {
	SearchSlots
	MissingFields []string `json:"missingParameters,omitempty"`
	IsGreeting    bool     `json:"isGreeting"`
}

// Has reports whether the named slot carries a value
func (s SearchSlots) Has(name string) bool {
	switch name {
	case SlotLocation:
		return present(s.Location)
	case SlotState:
		return present(s.State)
	case SlotZipcode:
		return present(s.Zipcode)
	case SlotBedrooms:
		return s.Bedrooms != nil
	case SlotBudget:
		return s.Budget != nil
	}
	return false
}

// IsEmpty reports whether no slot carries a value
func (s SearchSlots) IsEmpty() bool {
	for _, name := range []string{SlotLocation, SlotState, SlotZipcode, SlotBedrooms, SlotBudget} {
		if s.Has(name) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can mutate without aliasing
func (s SearchSlots) Clone() SearchSlots {
	return SearchSlots{
		Location: cloneString(s.Location),
		State:    cloneString(s.State),
		Zipcode:  cloneString(s.Zipcode),
		Bedrooms: cloneInt(s.Bedrooms),
		Budget:   cloneFloat(s.Budget),
	}
}

// IsMissing reports whether the extractor flagged the slot as not mentioned
func (e *ExtractionResult) IsMissing(name string) bool {
	for _, field := range e.MissingFields {
		if strings.EqualFold(strings.TrimSpace(field), name) {
			return true
		}
	}
	return false
}

// LocationValue returns the location or an empty string
func (s SearchSlots) LocationValue() string { return deref(s.Location) }

// StateValue returns the state or an empty string
func (s SearchSlots) StateValue() string { return deref(s.State) }

// ZipcodeValue returns the zipcode or an empty string
func (s SearchSlots) ZipcodeValue() string { return deref(s.Zipcode) }

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 { return &v }
