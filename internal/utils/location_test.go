package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NYC", "new york"},
		{"  New   York ", "new york"},
		{"LA", "los angeles"},
		{"Brooklyn, NY", "new york"},
		{"Austin, TX", "austin"},
		{"Chicago", "chicago"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLocation(tt.input))
		})
	}
}

func TestFuzzyMatchLocation(t *testing.T) {
	assert.True(t, FuzzyMatchLocation("nyc", "New York"))
	assert.True(t, FuzzyMatchLocation("chicago", "chicago il"))
	assert.False(t, FuzzyMatchLocation("boston", "los angeles"))
	assert.False(t, FuzzyMatchLocation("", "boston"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "new-york", Slugify("New York"))
	assert.Equal(t, "brooklyn", Slugify(" Brooklyn "))
	assert.Equal(t, "", Slugify(""))
}

func TestStateAbbreviation(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"NY", "NY", true},
		{"ca", "CA", true},
		{"New  Jersey", "NJ", true},
		{"Texas", "TX", true},
		{"XX", "", false},
		{"Narnia", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := StateAbbreviation(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferState(t *testing.T) {
	assert.Equal(t, "NY", InferState("Brooklyn"))
	assert.Equal(t, "CA", InferState("LA"))
	assert.Equal(t, "IL", InferState(" chicago "))
	assert.Equal(t, "", InferState("Springfield"))
}
