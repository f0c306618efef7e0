// Package knowledge loads the Orchestrator's static knowledge base: a
// deterministic phrase → {expanded terms, suggested filters, rationale}
// mapping used to expand domain-specific phrasing (spec §4.5 stage 4,
// "semantic memory"). It is startup-only file I/O (spec §5).
package knowledge

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Expansion is one phrase's knowledge-base entry.
type Expansion struct {
	ExpandedTerms    []string          `yaml:"expanded_terms"`
	SuggestedFilters map[string]string `yaml:"suggested_filters"`
	Rationale        string            `yaml:"rationale"`
}

type fileFormat struct {
	Phrases map[string]Expansion `yaml:"phrases"`
}

// Base is the loaded, read-only knowledge base. Lookups are a map read; no
// file I/O happens after Load.
type Base struct {
	phrases map[string]Expansion
}

// Load reads path once at startup (spec §5: "file I/O for knowledge base
// (startup only)").
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("knowledge: parse %s: %w", path, err)
	}
	normalized := make(map[string]Expansion, len(parsed.Phrases))
	for phrase, exp := range parsed.Phrases {
		normalized[normalizeKey(phrase)] = exp
	}
	return &Base{phrases: normalized}, nil
}

// Expand looks up every known phrase contained in query and returns the
// matching expansions, in the order their phrases first appear.
func (b *Base) Expand(query string) []Expansion {
	lower := normalizeKey(query)
	var matched []string
	for phrase := range b.phrases {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		pi, pj := strings.Index(lower, matched[i]), strings.Index(lower, matched[j])
		if pi != pj {
			return pi < pj
		}
		return matched[i] < matched[j]
	})

	out := make([]Expansion, len(matched))
	for i, phrase := range matched {
		out[i] = b.phrases[phrase]
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
