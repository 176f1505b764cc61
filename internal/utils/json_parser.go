package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	bareKey           = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	controlChars      = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseModelJSON decodes a language model reply into target. The reply may be:
// - a bare JSON object
// - JSON inside a markdown fence
// - JSON surrounded by prose
// - JSON with trailing commas, unquoted keys or single-quoted strings
func ParseModelJSON(input string, target any) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty model output")
	}

	candidates := []string{input}
	if fenced := extractFromMarkdown(input); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if embedded := extractJSONObject(input); embedded != "" {
		candidates = append(candidates, embedded, repairJSON(embedded))
	}
	candidates = append(candidates, repairJSON(input))

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no JSON object in model output: %s", Truncate(input, 100))
}

// extractFromMarkdown returns the body of the first ```json fence, or ""
func extractFromMarkdown(input string) string {
	matches := fencedJSONPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	body := strings.TrimSpace(matches[1])
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return body
	}
	return ""
}

// extractJSONObject finds the first balanced {...} in text
func extractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	return extractBalanced(input[start:], '{', '}')
}

// extractBalanced returns the prefix of input up to the matching close rune,
// ignoring delimiters inside string literals
func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}

	return ""
}

// repairJSON fixes the mistakes models commonly make
func repairJSON(input string) string {
	s := strings.TrimSpace(input)
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlChars.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted delimiters outside double-quoted strings
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	inSingleQuote := false
	escape := false
	prev := rune(0) // last non-space rune written

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
		case ch == '\'' && !inDoubleQuote:
			if inSingleQuote || strings.ContainsRune(":,[{", prev) || prev == 0 {
				inSingleQuote = !inSingleQuote
				ch = '"'
			}
		}
		result.WriteRune(ch)
		if ch != ' ' {
			prev = ch
		}
	}

	return result.String()
}

// Truncate shortens s to maxLen bytes, marking the cut
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
