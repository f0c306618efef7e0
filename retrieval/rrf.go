package retrieval

import "sort"

// RankedList is one ranked candidate list (vector or keyword) feeding RRF.
type RankedList struct {
	Source string // "vector" or "keyword"
	Weight float64
	// IDs in rank order, best first (rank 0 = best).
	IDs []string
}

// FusionConfig carries RRF's constant k (spec §4.3 default: 60). The
// per-list weights (vector 0.6, keyword 0.4) are set on each RankedList
// by Gateway.Search, not here.
type FusionConfig struct {
	K float64
}

// DefaultFusionConfig returns spec §4.3's default RRF constant.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{K: 60}
}

// Fuse combines ranked lists with Reciprocal Rank Fusion:
// score(d) = Σ_{l containing d} weight(l) / (k + rank_l(d)), rank_l(d) 1-based.
// Returns documents ordered by fused score descending, ties broken by
// document id ascending for determinism (spec §4.3).
func Fuse(lists []RankedList, cfg FusionConfig) []ScoredID {
	scores := make(map[string]float64)
	for _, list := range lists {
		for rank, id := range list.IDs {
			scores[id] += list.Weight / (cfg.K + float64(rank+1))
		}
	}

	out := make([]ScoredID, 0, len(scores))
	for id, score := range scores {
		out = append(out, ScoredID{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ScoredID pairs a document id with its fused score.
type ScoredID struct {
	ID    string
	Score float64
}
