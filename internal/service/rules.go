package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
	"jetrent/internal/utils"
)

var (
	studioPattern   = regexp.MustCompile(`(?i)\bstudios?\b`)
	bedroomsPattern = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six)\s*-?\s*(?:bed(?:room)?s?|br|bd|bdrm)\b`)
	moneyPattern    = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b|\b(\d+(?:\.\d+)?)\s*k\b|\b(?:under|below|max(?:imum)?|up to|less than|budget(?: is| of)?|around|about)\s*:?\s*\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`)
	bareMoney       = regexp.MustCompile(`(?i)^\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?(?:\s*(?:/\s*mo(?:nth)?|a month|per month|dollars))?[\s.!]*$`)
	zipPattern      = regexp.MustCompile(`(?i:\bzip(?:\s*code)?)\s*:?\s*(\d{5})\b|\b[A-Z]{2}\s+(\d{5})\b`)
	placePattern    = regexp.MustCompile(`(?i:\b(?:in|near|around|at))\s+([A-Z][A-Za-z'-]*(?:\s+[A-Z][A-Za-z'-]*)*)(?:\s*,\s*([A-Za-z]{2}\b|[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?))?`)
	barePlace       = regexp.MustCompile(`^([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*){0,3})(?:\s*,\s*([A-Za-z]{2}|[A-Za-z]+(?:\s+[A-Za-z]+)?))?[\s.!]*$`)
	plainAmount     = regexp.MustCompile(`\b(\d{1,2},\d{3}|\d{3,5})\b`)
)

var numberWords = map[string]int{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6}

// RuleExtractor is an offline extractor built on regular expressions. It
// understands the common phrasings well enough to run without a language model.
type RuleExtractor struct{}

// NewRuleExtractor creates a rule-based extractor
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract implements dialogue.Extractor
func (r *RuleExtractor) Extract(_ context.Context, text string) (*model.ExtractionResult, error) {
	text = strings.TrimSpace(text)
	if dialogue.IsGreeting(text) {
		return &model.ExtractionResult{IsGreeting: true}, nil
	}

	result := &model.ExtractionResult{}
	remaining := text

	if studioPattern.MatchString(remaining) {
		result.Bedrooms = model.IntPtr(0)
	} else if m := bedroomsPattern.FindStringSubmatch(remaining); m != nil {
		if n, ok := parseCount(m[1]); ok {
			result.Bedrooms = model.IntPtr(n)
		}
		remaining = strings.Replace(remaining, m[0], " ", 1)
	}

	if m := zipPattern.FindStringSubmatch(remaining); m != nil {
		result.Zipcode = model.StringPtr(firstNonEmpty(m[1], m[2]))
		remaining = strings.Replace(remaining, firstNonEmpty(m[1], m[2]), " ", 1)
	}

	if budget, ok := parseBudget(remaining); ok {
		result.Budget = model.Float64Ptr(budget)
	}

	if location, state := parsePlace(text); location != "" {
		result.Location = model.StringPtr(location)
		if state == "" {
			state = utils.InferState(location)
		}
		if state != "" {
			result.State = model.StringPtr(state)
		}
	}

	for _, name := range []string{model.SlotLocation, model.SlotState, model.SlotBedrooms, model.SlotBudget} {
		if !result.Has(name) {
			result.MissingFields = append(result.MissingFields, name)
		}
	}

	return result, nil
}

func parseBudget(text string) (float64, bool) {
	if m := bareMoney.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return parseAmount(m[1], m[2])
	}
	m := moneyPattern.FindStringSubmatch(text)
	if m == nil {
		if plain := plainAmount.FindString(text); plain != "" {
			return parseAmount(plain, "")
		}
		return 0, false
	}
	switch {
	case m[1] != "":
		return parseAmount(m[1], m[2])
	case m[3] != "":
		return parseAmount(m[3], "k")
	default:
		return parseAmount(m[4], m[5])
	}
}

func parseAmount(digits, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(suffix, "k") {
		v *= 1000
	}
	return v, true
}

func parseCount(s string) (int, bool) {
	if n, ok := numberWords[strings.ToLower(s)]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// parsePlace finds "in Brooklyn, NY" style phrases, or a message that is
// nothing but a place name
func parsePlace(text string) (string, string) {
	if m := placePattern.FindStringSubmatch(text); m != nil {
		location, state := splitTrailingState(m[1])
		if m[2] != "" {
			if code, ok := utils.StateAbbreviation(m[2]); ok {
				state = code
			}
		}
		return canonicalPlace(location), state
	}

	if dialogue.IsConfirmation(text) || dialogue.IsSearchCommand(text) || strings.ContainsAny(text, "0123456789$") {
		return "", ""
	}
	// A bare reply counts as a place only with a state or when the city is known
	if m := barePlace.FindStringSubmatch(text); m != nil {
		location := canonicalPlace(m[1])
		if m[2] != "" {
			if code, ok := utils.StateAbbreviation(m[2]); ok {
				return location, code
			}
			return "", ""
		}
		if utils.InferState(location) != "" {
			return location, ""
		}
	}
	return "", ""
}

// splitTrailingState separates "Jersey City NJ" into place and state code
func splitTrailingState(words string) (string, string) {
	fields := strings.Fields(words)
	if len(fields) < 2 {
		return words, ""
	}
	last := fields[len(fields)-1]
	if len(last) == 2 && strings.ToUpper(last) == last {
		if code, ok := utils.StateAbbreviation(last); ok {
			return strings.Join(fields[:len(fields)-1], " "), code
		}
	}
	return words, ""
}

// canonicalPlace expands nicknames like NYC but keeps real place names as written
func canonicalPlace(location string) string {
	location = strings.TrimSpace(location)
	switch strings.ToLower(location) {
	case "nyc", "new york city":
		return "New York"
	case "la", "l.a.":
		return "Los Angeles"
	case "sf":
		return "San Francisco"
	}
	return location
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
