package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempBase(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "expansions.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp fixture: %v", err)
	}
	return path
}

const fixture = `
phrases:
  "international school":
    expanded_terms: ["ISHCMC", "BIS"]
    suggested_filters:
      district: "district 2"
    rationale: "schools cluster in district 2"
  "close to metro":
    expanded_terms: ["metro station"]
    suggested_filters:
      proximity: "metro"
    rationale: "proximity hint"
`

func TestLoadParsesPhraseExpansions(t *testing.T) {
	path := writeTempBase(t, fixture)
	base, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(base.phrases) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(base.phrases))
	}
}

func TestExpandMatchesSubstringCaseInsensitively(t *testing.T) {
	path := writeTempBase(t, fixture)
	base, _ := Load(path)

	expansions := base.Expand("Looking for a flat near an International School")
	if len(expansions) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(expansions), expansions)
	}
	if expansions[0].SuggestedFilters["district"] != "district 2" {
		t.Errorf("unexpected expansion: %+v", expansions[0])
	}
}

func TestExpandReturnsMultipleMatchesDeterministically(t *testing.T) {
	path := writeTempBase(t, fixture)
	base, _ := Load(path)

	a := base.Expand("international school close to metro")
	b := base.Expand("international school close to metro")
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected 2 matches both times, got %d and %d", len(a), len(b))
	}
	if a[0].Rationale != b[0].Rationale {
		t.Error("expected deterministic ordering across calls")
	}
}

func TestExpandReturnsEmptyWhenNoPhraseMatches(t *testing.T) {
	path := writeTempBase(t, fixture)
	base, _ := Load(path)

	if expansions := base.Expand("just a plain query"); len(expansions) != 0 {
		t.Errorf("expected no matches, got %+v", expansions)
	}
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
