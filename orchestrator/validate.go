package orchestrator

import (
	"strings"
	"unicode"
)

// decorativeRanges are Unicode blocks stripped from the normalization path
// only (spec §4.5 stage 1: "Strip emoji and decorative characters from the
// normalization path; display unchanged").
func isDecorative(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // emoji & pictographs
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols & dingbats
		return true
	}
	return false
}

// normalize produces the cleaned query used for downstream matching and
// LLM prompts, stripping decorative characters and collapsing whitespace.
// The caller keeps the original query for display.
func normalize(query string) string {
	var b strings.Builder
	for _, r := range query {
		if isDecorative(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncateToMaxLength enforces spec §4.5 stage 1's MAX_QUERY_LENGTH,
// returning the possibly-truncated query and whether truncation occurred.
func truncateToMaxLength(query string, maxLength int) (string, bool) {
	runes := []rune(query)
	if len(runes) <= maxLength {
		return query, false
	}
	return string(runes[:maxLength]), true
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
