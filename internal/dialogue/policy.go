package dialogue

// State is a dialogue policy state
type State string

const (
	StateAwaitingInput  State = "awaiting_input"
	StateGreeting       State = "greeting"
	StateAskingForSlots State = "asking_for_slots"
	StateAcknowledging  State = "acknowledging"
	StateSearching      State = "searching"
	StatePresenting     State = "presenting"
)

// Decision is the policy outcome for one turn
type Decision struct {
	State    State    `json:"state"`
	Intent   Intent   `json:"intent"`
	Missing  []string `json:"missing,omitempty"`
	Blocking bool     `json:"blocking,omitempty"` // search was requested but slots are missing
}

// ShouldSearch reports whether the decision dispatches a search
func (d Decision) ShouldSearch() bool {
	return d.State == StateSearching
}

// Decide applies the transition table, first match wins. Every turn starts
// from AwaitingInput; completing the slots alone never triggers a search.
func Decide(intent Intent, missing []string) Decision {
	d := Decision{State: StateAwaitingInput, Intent: intent, Missing: missing}

	switch {
	case intent == IntentGreeting:
		d.State = StateGreeting
		d.Missing = nil
	case intent == IntentSearchCommand && len(missing) == 0:
		d.State = StateSearching
	case intent == IntentSearchCommand:
		d.State = StateAskingForSlots
		d.Blocking = true
	case len(missing) > 0:
		d.State = StateAskingForSlots
	default:
		d.State = StateAcknowledging
	}

	return d
}

// Presented moves a searching decision to Presenting once dispatch completes
func (d Decision) Presented() Decision {
	if d.State == StateSearching {
		d.State = StatePresenting
	}
	return d
}
