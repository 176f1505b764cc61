package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jetrent/internal/model"
)

func TestIsSearchCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Show me apartments", true},
		{"find listings in brooklyn", true},
		{"Can you search for rentals?", true},
		{"give me some options", true},
		{"display the results", true},
		{"search zillow", true},
		{"Please SEARCH Zillow now", true},
		{"pull up a few places for me", true},
		{"I'm looking for a 1 bedroom in Brooklyn", false},
		{"my budget is 2500", false},
		{"show me", false},
		{"apartments are expensive", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSearchCommand(tt.text))
		})
	}
}

func TestIsConfirmation(t *testing.T) {
	for _, text := range []string{"yes", "Yes please!", "sure, go ahead", "ok", "do it", "Let's do it.", "yep, search now"} {
		assert.True(t, IsConfirmation(text), text)
	}
	for _, text := range []string{"yesterday I saw one", "no", "2 bedrooms", "yes but in Queens", ""} {
		assert.False(t, IsConfirmation(text), text)
	}
}

func TestIsGreeting(t *testing.T) {
	for _, text := range []string{"hi", "Hello!", "hey there", "Good morning", "what's up?"} {
		assert.True(t, IsGreeting(text), text)
	}
	for _, text := range []string{"hi, I need a 2 bedroom in Boston", "history", "show me apartments"} {
		assert.False(t, IsGreeting(text), text)
	}
}

func TestClassifyIntent(t *testing.T) {
	greeting := &model.ExtractionResult{IsGreeting: true}
	ordinary := &model.ExtractionResult{}

	tests := []struct {
		name          string
		text          string
		extraction    *model.ExtractionResult
		searchOffered bool
		want          Intent
	}{
		{"Greeting flag wins", "hi, show me apartments", greeting, false, IntentGreeting},
		{"Command", "show me apartments", ordinary, false, IntentSearchCommand},
		{"Confirmation after offer", "yes please", ordinary, true, IntentSearchCommand},
		{"Confirmation without offer", "yes please", ordinary, false, IntentOrdinary},
		{"Ordinary", "2 bedrooms", ordinary, true, IntentOrdinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.text, tt.extraction, tt.searchOffered))
		})
	}
}
