package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetrent/internal/model"
)

func TestRuleExtractor_Extract(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    model.SearchSlots
		missing []string
	}{
		{
			name: "full sentence",
			text: "I need a 2 bedroom apartment in Brooklyn, NY under $2500",
			want: model.SearchSlots{
				Location: model.StringPtr("Brooklyn"), State: model.StringPtr("NY"),
				Bedrooms: model.IntPtr(2), Budget: model.Float64Ptr(2500),
			},
		},
		{
			name: "studio with full state name and plain amount",
			text: "studio in Austin, Texas for 1800",
			want: model.SearchSlots{
				Location: model.StringPtr("Austin"), State: model.StringPtr("TX"),
				Bedrooms: model.IntPtr(0), Budget: model.Float64Ptr(1800),
			},
		},
		{
			name:    "bare k amount",
			text:    "3k",
			want:    model.SearchSlots{Budget: model.Float64Ptr(3000)},
			missing: []string{"location", "state", "bedrooms"},
		},
		{
			name:    "bare known city",
			text:    "Brooklyn",
			want:    model.SearchSlots{Location: model.StringPtr("Brooklyn"), State: model.StringPtr("NY")},
			missing: []string{"bedrooms", "budget"},
		},
		{
			name:    "nickname and number word",
			text:    "two bedrooms in NYC",
			want:    model.SearchSlots{Location: model.StringPtr("New York"), State: model.StringPtr("NY"), Bedrooms: model.IntPtr(2)},
			missing: []string{"budget"},
		},
		{
			name: "trailing state and zip",
			text: "1 bed in Jersey City NJ 07302, max $2,000",
			want: model.SearchSlots{
				Location: model.StringPtr("Jersey City"), State: model.StringPtr("NJ"), Zipcode: model.StringPtr("07302"),
				Bedrooms: model.IntPtr(1), Budget: model.Float64Ptr(2000),
			},
		},
		{
			name:    "confirmation carries nothing",
			text:    "yes please",
			want:    model.SearchSlots{},
			missing: []string{"location", "state", "bedrooms", "budget"},
		},
		{
			name:    "unknown bare phrase is not a place",
			text:    "Sounds great",
			want:    model.SearchSlots{},
			missing: []string{"location", "state", "bedrooms", "budget"},
		},
	}

	extractor := NewRuleExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(context.Background(), tt.text)
			require.NoError(t, err)
			assert.False(t, got.IsGreeting)
			assert.Equal(t, tt.want, got.SearchSlots)
			assert.Equal(t, tt.missing, got.MissingFields)
		})
	}
}

func TestRuleExtractor_Greeting(t *testing.T) {
	got, err := NewRuleExtractor().Extract(context.Background(), "Hello there!")
	require.NoError(t, err)
	assert.True(t, got.IsGreeting)
	assert.True(t, got.IsEmpty())
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"$2,500", 2500, true},
		{"2.5k", 2500, true},
		{"up to 1800 a month", 1800, true},
		{"budget is $3k", 3000, true},
		{"no idea", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parseBudget(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
