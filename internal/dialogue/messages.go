package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"jetrent/internal/model"
)

const (
	WelcomeMessage = "👋 Welcome to JetRent! I'm your apartment-finding assistant. Tell me about the apartment you're looking for, including location, number of bedrooms, and your budget."

	ExtractionFailureMessage = "I'm sorry, I encountered an error while processing your request. Please try again in a moment."

	// EmptyResponseMessage replaces a blank language model reply
	EmptyResponseMessage = "I'm sorry, I couldn't generate a response."

	// AssistantPersona is the system prompt for free-text replies
	AssistantPersona = `You are a helpful apartment-finding assistant named JetRent AI.
Help users find apartments based on their criteria.

You need four pieces of information to perform a search:
1. LOCATION: Where the user wants to live (city, neighborhood, etc.)
2. STATE: The two-letter US state the location is in
3. BEDROOMS: How many bedrooms they need (or if they want a studio)
4. BUDGET: Maximum monthly rent they can afford

IMPORTANT CONVERSATION RULES:
- If the user just says "hi" or offers a greeting, respond with a friendly greeting and ask
  what kind of apartment they're looking for. DO NOT assume they want any specific type of apartment.
- If any information is missing, ask for it in a friendly, conversational way.
- Never claim to have searched unless search results are provided to you.
- The search only runs when the user asks for it, for example "show me listings".

Be helpful and enthusiastic. Make apartment hunting feel easy and enjoyable.
Use emoji occasionally to keep the conversation friendly. 🏙️ 🏢 🔑`
)

var slotLabels = map[string]string{
	model.SlotLocation: "location",
	model.SlotState:    "state",
	model.SlotZipcode:  "zip code",
	model.SlotBedrooms: "number of bedrooms",
	model.SlotBudget:   "budget",
}

// Reply is what the assistant says for a decision: a deterministic fallback
// text and the instruction a language model gets to phrase it
type Reply struct {
	Template    string
	Instruction string
}

// ComposeReply builds the reply for a decided turn. listings and searchErr
// only matter when the decision is Presenting.
func ComposeReply(d Decision, slots model.SearchSlots, listings []model.ListingResult, searchErr, searchURL string) Reply {
	switch d.State {
	case StateGreeting:
		return Reply{
			Template:    "Hi there! 👋 What kind of apartment are you looking for? Let me know the city and state, how many bedrooms you need, and your monthly budget.",
			Instruction: "The user has just greeted you. Respond with a friendly greeting and ask what kind of apartment they're looking for. DO NOT assume any specific preferences.",
		}

	case StateAskingForSlots:
		missing := JoinFields(d.Missing)
		if d.Blocking {
			return Reply{
				Template: fmt.Sprintf("I'd love to run that search for you, but I still need your %s before I can look for listings. 🔑", missing),
				Instruction: fmt.Sprintf("%sThe user asked to search, but the search cannot run until they provide their %s. Say clearly that the search is waiting on these details and ask for them.",
					describeKnown(slots), missing),
			}
		}
		return Reply{
			Template:    fmt.Sprintf("%sCould you tell me your %s?", acknowledgement(slots), missing),
			Instruction: fmt.Sprintf("%sI still need to ask for their %s. Be conversational and friendly.", describeKnown(slots), missing),
		}

	case StateAcknowledging:
		return Reply{
			Template: fmt.Sprintf("Got it! I'm looking for %s. Want me to search for listings now? Just say \"show me apartments\" or \"yes\". 🏙️", DescribeCriteria(slots)),
			Instruction: fmt.Sprintf("%sYou now have everything needed to search but have NOT searched yet. Confirm the criteria and ask whether they'd like you to search for listings now.",
				describeKnown(slots)),
		}

	case StatePresenting, StateSearching:
		if len(listings) == 0 {
			return emptyResults(slots, searchErr, searchURL)
		}
		summary := ResultsSummary(slots, listings)
		template := summary
		if searchURL != "" {
			template += fmt.Sprintf("\nYou can also browse more options here: %s", searchURL)
		}
		return Reply{
			Template: template + "\nWould you like to adjust your search criteria?",
			Instruction: fmt.Sprintf("You are presenting apartment search results to the user. Here are the results: %s\n\nPresent these results in a friendly, conversational way. Format them nicely with emojis, and ask if they'd like to modify their search criteria.",
				summary),
		}
	}

	return Reply{Template: EmptyResponseMessage}
}

func emptyResults(slots model.SearchSlots, searchErr, searchURL string) Reply {
	template := fmt.Sprintf("I couldn't find any apartments matching %s. 😕", DescribeCriteria(slots))
	if searchErr != "" {
		template = fmt.Sprintf("I ran into a problem searching for listings: %s.", searchErr)
	}
	if searchURL != "" {
		template += fmt.Sprintf(" You can try browsing directly here: %s", searchURL)
	}
	template += " Would you like to try different criteria?"

	return Reply{
		Template: template,
		Instruction: fmt.Sprintf("The user is looking for %s, but no matching apartments were found. Inform them gently and ask if they'd like to try different criteria.",
			DescribeCriteria(slots)),
	}
}

// ResultsSummary lists the listings as numbered lines
func ResultsSummary(slots model.SearchSlots, listings []model.ListingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your criteria (%s), I found %d apartment%s:\n\n", DescribeCriteria(slots), len(listings), plural(len(listings)))
	for i, l := range listings {
		fmt.Fprintf(&b, "%d. %s - %s - %s - %s/month", i+1, l.Title, l.Address, DescribeBedrooms(l.Bedrooms), FormatMoney(l.Rent))
		if l.Description != "" {
			fmt.Fprintf(&b, " - %s", l.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ExtractionSummary renders the "Extracted Parameters" turn. It returns ""
// for greetings and for extractions that found nothing.
func ExtractionSummary(e *model.ExtractionResult) string {
	if e == nil || e.IsGreeting || e.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("🔍 **Extracted Parameters:**\n\n")
	if e.Has(model.SlotLocation) {
		fmt.Fprintf(&b, "📍 **Location**: %s\n", e.LocationValue())
	}
	if e.Has(model.SlotState) {
		fmt.Fprintf(&b, "🗺️ **State**: %s\n", e.StateValue())
	}
	if e.Has(model.SlotZipcode) {
		fmt.Fprintf(&b, "📮 **Zip code**: %s\n", e.ZipcodeValue())
	}
	if e.Bedrooms != nil {
		fmt.Fprintf(&b, "🛏️ **Bedrooms**: %s\n", bedroomsShort(*e.Bedrooms))
	}
	if e.Budget != nil {
		fmt.Fprintf(&b, "💰 **Budget**: %s\n", FormatMoney(*e.Budget))
	}
	if len(e.MissingFields) > 0 {
		fmt.Fprintf(&b, "\n⚠️ **Missing**: %s", strings.Join(e.MissingFields, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// DescribeCriteria renders known slots as a phrase, e.g.
// "a 1 bedroom apartment in Brooklyn, NY with a budget of $2,500"
func DescribeCriteria(slots model.SearchSlots) string {
	phrase := "an apartment"
	if slots.Bedrooms != nil {
		if *slots.Bedrooms == 0 {
			phrase = "a studio"
		} else {
			phrase = fmt.Sprintf("a %d bedroom apartment", *slots.Bedrooms)
		}
	}
	if place := describePlace(slots); place != "" {
		phrase += " in " + place
	}
	if slots.Budget != nil {
		phrase += " with a budget of " + FormatMoney(*slots.Budget)
	}
	return phrase
}

// DescribeBedrooms renders a bedroom count, 0 being a studio
func DescribeBedrooms(n int) string {
	if n == 0 {
		return "Studio"
	}
	return fmt.Sprintf("%d bedroom", n)
}

func bedroomsShort(n int) string {
	if n == 0 {
		return "Studio"
	}
	return strconv.Itoa(n)
}

// FormatMoney renders dollars with thousands separators and no cents when whole
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String()
	if cents > 0 {
		out += fmt.Sprintf(".%02d", cents)
	}
	if neg {
		out = "-" + out
	}
	return out
}

// JoinFields renders slot names for a sentence: "a", "a and b", "a, b and c"
func JoinFields(fields []string) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		if label, ok := slotLabels[f]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, f)
		}
	}

	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}

func describePlace(slots model.SearchSlots) string {
	place := strings.TrimSpace(slots.LocationValue())
	state := strings.TrimSpace(slots.StateValue())
	switch {
	case place != "" && state != "":
		return place + ", " + state
	case place != "":
		return place
	default:
		return state
	}
}

// describeKnown gives the language model what is known so far
func describeKnown(slots model.SearchSlots) string {
	var b strings.Builder
	b.WriteString("The user is looking for an apartment. ")
	if place := describePlace(slots); place != "" {
		fmt.Fprintf(&b, "They want to live in %s. ", place)
	}
	if slots.Bedrooms != nil {
		if *slots.Bedrooms == 0 {
			b.WriteString("They need a studio. ")
		} else {
			fmt.Fprintf(&b, "They need %d bedroom%s. ", *slots.Bedrooms, plural(*slots.Bedrooms))
		}
	}
	if slots.Budget != nil {
		fmt.Fprintf(&b, "Their budget is %s. ", FormatMoney(*slots.Budget))
	}
	return b.String()
}

func acknowledgement(slots model.SearchSlots) string {
	if slots.IsEmpty() {
		return "Happy to help you find an apartment! "
	}
	return fmt.Sprintf("Great, so far I have %s. ", DescribeCriteria(slots))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
