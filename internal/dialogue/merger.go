package dialogue

import (
	"strings"

	"jetrent/internal/model"
)

// Merge folds one extraction into the accumulated slots. A field is taken
// from the extraction only when it carries a value and is not listed as
// missing; every other field keeps its prior value. Greetings never touch
// the slots. The returned list holds the required slots still unknown.
func Merge(prior model.SearchSlots, extraction *model.ExtractionResult) (model.SearchSlots, []string) {
	merged := prior.Clone()
	if extraction == nil || extraction.IsGreeting {
		return merged, MissingRequired(merged)
	}

	take := func(name string) bool {
		return extraction.Has(name) && !extraction.IsMissing(name)
	}

	if take(model.SlotLocation) {
		merged.Location = model.StringPtr(strings.TrimSpace(*extraction.Location))
	}
	if take(model.SlotState) {
		merged.State = model.StringPtr(strings.ToUpper(strings.TrimSpace(*extraction.State)))
	}
	if take(model.SlotZipcode) {
		merged.Zipcode = model.StringPtr(strings.TrimSpace(*extraction.Zipcode))
	}
	if take(model.SlotBedrooms) {
		merged.Bedrooms = model.IntPtr(*extraction.Bedrooms)
	}
	if take(model.SlotBudget) {
		merged.Budget = model.Float64Ptr(*extraction.Budget)
	}

	return merged, MissingRequired(merged)
}

// MissingRequired lists unknown required slots in asking order
func MissingRequired(slots model.SearchSlots) []string {
	missing := make([]string, 0, len(model.RequiredSlots))
	for _, name := range model.RequiredSlots {
		if !slots.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// AllFilled reports whether every required slot is known
func AllFilled(slots model.SearchSlots) bool {
	return len(MissingRequired(slots)) == 0
}
