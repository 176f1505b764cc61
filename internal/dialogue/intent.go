package dialogue

import (
	"regexp"
	"strings"

	"jetrent/internal/model"
)

// Intent is the classification of one user message
type Intent string

const (
	IntentOrdinary      Intent = "ordinary"
	IntentGreeting      Intent = "greeting"
	IntentSearchCommand Intent = "search_command"
)

var (
	searchCommandPattern = regexp.MustCompile(`(?i)\b(search|find|show|get|give me|display|look for|pull up)\b.*\b(apartments?|listings?|rentals?|places?|homes?|properties|property|results?|units?|options?)\b`)
	searchZillowPattern  = regexp.MustCompile(`(?i)\bsearch\s+zillow\b`)
	confirmationPattern  = regexp.MustCompile(`(?i)^(?:(?:yes|yeah|yep|yup|sure|ok|okay|please|go ahead|do it|let'?s do it|let'?s go|sounds good|go for it|search|now|for me)[\s!.,]*)+$`)
	greetingPattern      = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|hiya|howdy|yo|good (morning|afternoon|evening)|greetings|what'?s up|sup)\b[\s!.,]*(there|jetrent|everyone|all)?[\s!.,?]*$`)
)

// IsSearchCommand reports whether text explicitly asks for listings
func IsSearchCommand(text string) bool {
	return searchZillowPattern.MatchString(text) || searchCommandPattern.MatchString(text)
}

// IsConfirmation reports whether text is a short affirmative reply
func IsConfirmation(text string) bool {
	return confirmationPattern.MatchString(strings.TrimSpace(text))
}

// IsGreeting reports whether text is only a greeting with no search intent
func IsGreeting(text string) bool {
	return greetingPattern.MatchString(text)
}

// ClassifyIntent decides how the policy treats the current message. A short
// affirmative counts as a search command only right after a search was offered.
func ClassifyIntent(text string, extraction *model.ExtractionResult, searchOffered bool) Intent {
	switch {
	case extraction != nil && extraction.IsGreeting:
		return IntentGreeting
	case IsSearchCommand(text):
		return IntentSearchCommand
	case searchOffered && IsConfirmation(text):
		return IntentSearchCommand
	default:
		return IntentOrdinary
	}
}
