package retrieval

import "testing"

func TestFuseCombinesWeightedRanks(t *testing.T) {
	lists := []RankedList{
		{Source: "vector", Weight: 0.6, IDs: []string{"a", "b", "c"}},
		{Source: "keyword", Weight: 0.4, IDs: []string{"b", "a", "d"}},
	}
	fused := Fuse(lists, DefaultFusionConfig())

	if len(fused) != 4 {
		t.Fatalf("expected 4 distinct documents, got %d", len(fused))
	}
	// a: 0.6/(60+1) + 0.4/(60+2); b: 0.6/(60+2) + 0.4/(60+1) — a should win
	// since vector's higher weight at its best rank outweighs keyword's.
	if fused[0].ID != "a" {
		t.Errorf("expected a to rank first, got %+v", fused)
	}
}

func TestFuseBreaksTiesByID(t *testing.T) {
	lists := []RankedList{
		{Source: "vector", Weight: 0.6, IDs: []string{"z"}},
		{Source: "keyword", Weight: 0.4, IDs: []string{"a"}},
	}
	// Construct equal scores by using equal weight and same rank.
	lists = []RankedList{
		{Source: "vector", Weight: 0.5, IDs: []string{"z"}},
		{Source: "keyword", Weight: 0.5, IDs: []string{"a"}},
	}
	fused := Fuse(lists, DefaultFusionConfig())
	if fused[0].ID != "a" {
		t.Errorf("expected tie broken by ascending id, got %+v", fused)
	}
}

func TestFuseOnlyIncludesDocumentsPresentInSomeList(t *testing.T) {
	lists := []RankedList{
		{Source: "vector", Weight: 0.6, IDs: []string{"only-vector"}},
	}
	fused := Fuse(lists, DefaultFusionConfig())
	if len(fused) != 1 || fused[0].ID != "only-vector" {
		t.Errorf("expected single vector-only document, got %+v", fused)
	}
}
